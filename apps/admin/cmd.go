package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/submission"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp    = errors.New("help provided")
	errInvalid = errors.New("form is invalid")
)

type commandLine struct {
	conf *core.Config
	svc  *submission.Service
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  forms                                                - list the known forms")
	fmt.Fprintln(cli.out, "  validate -form NAME [-file VALUES.json] [-set k=v]   - validate values against a form")
	fmt.Fprintln(cli.out, "  submit -form NAME [-file VALUES.json] [-set k=v]     - validate and store values")
	fmt.Fprintln(cli.out, "  submissions -form NAME [-page N] [-per-page N]       - list stored submissions")
	fmt.Fprintln(cli.out, "  migrate                                              - create the database and tables (postgres storage)")
}

// setFlag collects repeated -set key=value flags.
type setFlag map[string]interface{}

func (s setFlag) String() string {
	pairs := make([]string, 0, len(s))
	for k, v := range s {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (s setFlag) Set(value string) error {
	kv := strings.SplitN(value, "=", 2)
	if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
		return errors.Errorf("%q: want key=value", value)
	}
	s[strings.TrimSpace(kv[0])] = kv[1]
	return nil
}

type valuesCmd struct {
	fs   *flag.FlagSet
	form *string
	file *string
	set  setFlag
}

func (cli *commandLine) newValuesCmd(name string) valuesCmd {
	cmd := valuesCmd{fs: flag.NewFlagSet(name, flag.ContinueOnError), set: make(setFlag)}
	cmd.fs.SetOutput(cli.out)
	cmd.form = cmd.fs.String("form", "", "The form name, as listed by the forms command.")
	cmd.file = cmd.fs.String("file", "", "A JSON file holding the values.")
	cmd.fs.Var(cmd.set, "set", "A key=value pair, repeatable. Overrides the file values.")
	return cmd
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "forms":
		return cli.listForms()

	case "validate", "submit":
		cmd := cli.newValuesCmd(args[1])
		if err := cmd.fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *cmd.form == "" {
			cmd.fs.Usage()
			return errHelp
		}
		values, err := cli.readValues(*cmd.form, *cmd.file, cmd.set)
		if err != nil {
			return err
		}
		if args[1] == "validate" {
			return cli.validate(*cmd.form, values)
		}
		return cli.submit(*cmd.form, values)

	case "submissions":
		fs := flag.NewFlagSet("submissions", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		name := fs.String("form", "", "The form name, as listed by the forms command.")
		page := fs.Int("page", 1, "The page number.")
		perPage := fs.Int("per-page", 0, "The page size (defaults to the configured size).")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *name == "" {
			fs.Usage()
			return errHelp
		}
		return cli.listSubmissions(*name, *page, *perPage)

	case "migrate":
		return cli.migrate()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listForms() error {
	forms := cli.svc.Forms()
	for _, name := range forms.Names() {
		def, _ := forms.Get(name)
		fmt.Fprintf(cli.out, "%-18s %-20s %s\n", def.Name, def.Title, strings.Join(def.Fields(), ", "))
	}
	return nil
}

// readValues merges the values of file and set, then prompts for the sensitive
// fields that are still missing.
func (cli *commandLine) readValues(name, file string, set setFlag) (map[string]interface{}, error) {
	def, ok := cli.svc.Forms().Get(name)
	if !ok {
		return nil, errors.Wrapf(submission.ErrUnknownForm, "%q", name)
	}

	values := make(map[string]interface{})
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(err, "reading values file")
		}
		if err = json.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", file)
		}
	}
	for k, v := range set {
		values[k] = v
	}

	return values, cli.promptSensitive(def, values)
}

func (cli *commandLine) promptSensitive(def catalog.Definition, values map[string]interface{}) error {
	for _, field := range def.Sensitive {
		if !form.IsEmpty(values[field]) {
			continue
		}
		fmt.Fprintf(cli.out, "Enter %s:", field)
		secret, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return errors.Wrapf(err, "reading %s", field)
		}
		values[field] = string(secret)
	}
	return nil
}

func (cli *commandLine) printErrors(errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(cli.out, "%s: %s\n", field, errs[field])
	}
}

func (cli *commandLine) validate(name string, values map[string]interface{}) error {
	errs, err := cli.svc.Validate(name, values)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		cli.printErrors(errs)
		return errInvalid
	}
	fmt.Fprintln(cli.out, "valid")
	return nil
}

func (cli *commandLine) submit(name string, values map[string]interface{}) error {
	sub, err := cli.svc.Submit(context.Background(), name, values)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			cli.printErrors(vErr.FieldMap())
			return errInvalid
		}
		return err
	}
	fmt.Fprintln(cli.out, sub.ID)
	return nil
}

func (cli *commandLine) listSubmissions(name string, page, perPage int) error {
	p, subs, err := cli.svc.List(context.Background(), name, page, perPage)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		vals, err := json.Marshal(cli.svc.Public(sub).Values)
		if err != nil {
			return errors.Wrapf(err, "encoding submission %s", sub.ID)
		}
		fmt.Fprintf(cli.out, "%s  %s  %s\n", sub.ID, sub.CreatedAt.Format("2006-01-02 15:04:05"), vals)
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d submissions)\n", p.Number, p.TotalPages, p.Total)
	return nil
}
