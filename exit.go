package main

import (
	"fmt"
	"os"
	"runtime"
)

// fatalWithWait prints an error and exits. On Windows it waits for a key
// press first so a double-clicked console window doesn't vanish with the
// message.
func fatalWithWait(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	waitOnWindows()
	os.Exit(1)
}

// waitOnWindows blocks until enter is pressed, but only on Windows.
func waitOnWindows() {
	if runtime.GOOS != "windows" {
		return
	}
	fmt.Println("\nPress Enter to exit...")
	fmt.Scanln()
}
