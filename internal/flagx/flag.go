// Package flagx helps independent flag sets share os.Args. The server and
// the CLI each define their own flags, and the config loader additionally
// looks for its -c/-config pair, so every consumer first narrows the
// argument list down to the flags it owns.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the arguments belonging to the flags listed in keep,
// so a flag set can parse them without tripping over flags owned by another
// component.
//
// Both spellings are recognized: a detached value ("-c protokol.json") and
// the equals form ("--config=protokol.json"). A kept flag whose next
// argument starts with a dash is passed through without a value.
func FilterArgs(args []string, keep []string) []string {
	wanted := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		wanted[name] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := wanted[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := wanted[arg]; !ok {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// JsonConfigFlags reads the config file path from the -c or -config flag,
// ignoring every other argument. An empty string means no config file was
// named on the command line.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("jsonconfig", flag.ContinueOnError)
	var path string
	fs.StringVar(&path, "config", "", "path to the JSON config file")
	fs.StringVar(&path, "c", "", "path to the JSON config file (shorthand)")
	_ = fs.Parse(args)

	return path
}
