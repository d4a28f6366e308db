package connection

import "os/exec"

// spawnProcess starts the terminal executable detached from this process.
// The spawned terminal keeps running after the library shuts down.
func spawnProcess(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child when it eventually exits so it doesn't stay a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
