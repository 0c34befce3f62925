package display

import (
	"fmt"
	"os"

	"github.com/backmassage/retrograde/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, ` ____         _                                         _
|  _ \   ___ | |_  _ __   ___    __ _  _ __   __ _   __| |  ___
| |_) | / _ \| __|| '__| / _ \  / _` + "`" + ` || '__| / _` + "`" + ` | / _` + "`" + ` | / _ \
|  _ < |  __/| |_ | |   | (_) || (_| || |   | (_| || (_| ||  __/
|_| \_\ \___| \__||_|    \___/  \__, ||_|    \__,_| \__,_| \___|
                                |___/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
