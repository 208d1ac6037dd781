/*
Package command parses operator-supplied command lines and builds the
child-process invocations a handler spawns.

Command lines are tokenised once at configuration time using POSIX shell
word rules (quotes and backslash escapes). Syntax errors and empty command
lines surface as startup failures; at spawn time a Command only assembles
an exec.Cmd with the notification environment overlaid on the parent
environment.

# Usage

	cmd, err := command.Parse(`sudo -n -H -u freaky fdm -a eda fetch`)
	if err != nil {
		// startup failure
	}

	child := cmd.Cmd(map[string]string{
		"IMSE_USER":  "freaky",
		"IMSE_EVENT": "MessageNew",
	})
	err = child.Run()

Duplicate keys append after the parent environment, so the overlay wins
for any variable the parent also defines.
*/
package command
