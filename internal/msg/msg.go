package msg

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

func Error(format string, a ...any) {
	fmt.Print(color.HiRedString("ERROR"))
	fmt.Print(": ")
	fmt.Printf(format, a...)
	fmt.Print("\n")
}

func Warn(format string, a ...any) {
	fmt.Print(color.YellowString("WARN"))
	fmt.Print(": ")
	fmt.Printf(format, a...)
	fmt.Print("\n")
}

// Fatal prints a single user-facing error line and terminates the run.
func Fatal(format string, a ...any) {
	Error(format, a...)
	os.Exit(1)
}

func Info(format string, a ...any) {
	fmt.Print(color.HiGreenString("INFO"))
	fmt.Print(": ")
	fmt.Printf(format, a...)
	fmt.Print("\n")
}

// TestHeader returns the unified banner line that identifies the start of
// one test's output.
func TestHeader(target string) string {
	rule := strings.Repeat("=", 30)
	return fmt.Sprintf("%s %s %s", rule, target, rule)
}
