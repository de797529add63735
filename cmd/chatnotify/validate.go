package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
)

var (
	// validate flags
	writeConfig bool
	outputPath  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule file",
	Long: `Load a rule file and report every problem the engine would repair:
blank triggers, broken regular expressions, notifications without effect,
misplaced catch-all rules and so on.

With --write the repaired rule set is saved, to --output when given or
over the input file otherwise. The output encoding follows the file
extension.

Exits non-zero when problems were found and not written back.

Examples:
  chatnotify validate --config rules.json
  chatnotify validate --config rules.json --write --output rules.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&writeConfig, "write", "w", false,
		"Save the repaired rule set")
	validateCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Destination for --write (defaults to the input file)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return errors.New("no rule file given (use --config or " + envConfig + ")")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	issues := validationIssues(cfg.Validate(profileName))
	out := cmd.OutOrStdout()
	reportIssues(out, issues)

	if writeConfig {
		dest := outputPath
		if dest == "" {
			dest = configPath
		}
		if err := config.Save(dest, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", dest)
		return nil
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d problem(s) found", len(issues))
	}
	return nil
}

// validationIssues splits the joined error returned by Config.Validate.
func validationIssues(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func reportIssues(out io.Writer, issues []error) {
	if len(issues) == 0 {
		fmt.Fprintln(out, "ok")
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(out, "- %v\n", issue)
	}
}
