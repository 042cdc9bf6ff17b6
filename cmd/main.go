// Command interview-assistant serves the AI-assisted interview and its
// interviewer dashboard, and carries helper commands for resumes and smoke runs.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
