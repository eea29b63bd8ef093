package audiopipe

import "os/exec"

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
