package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/wizard"
)

// answersFile is the input of `carescope assess`.
type answersFile struct {
	PersonalInfo wizard.PersonalInfo `yaml:"personalInfo"`
	Answers      map[string]float64  `yaml:"answers"`
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the thyroid symptom survey from a YAML answers file",
	Long: `Run the thyroid symptom survey without the TUI.

The answers file looks like:

  personalInfo:
    age: "45"
    gender: female        # male | female | other
    familyHistory: "yes"  # no | yes | unknown
  answers:
    fatigue: 0.7
    weight_change: 0.4
    neck_swelling: 0.8

Questions left out are answered 0.0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		withExplain, _ := cmd.Flags().GetBool("explain")

		in, err := readAnswers(path)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		e.restore(cmd)

		wiz := wizard.New(e.predict, e.session.Token)
		defer wiz.Close()
		if err := fillWizard(wiz, in); err != nil {
			return err
		}

		ctx, cancel := timeoutContext(cmd, 2*time.Minute)
		defer cancel()

		stop := startSpinner(" Assessing your answers...")
		res, err := wiz.Submit(ctx)
		stop()
		if err != nil {
			return err
		}

		var note *explain.Explanation
		if withExplain {
			stop := startSpinner(" Preparing an explanation...")
			ex := e.explainer(cmd).Survey(ctx, wizard.Submission{Answers: wiz.Answers(), PersonalInfo: wiz.PersonalInfo()}, *res)
			stop()
			note = &ex
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(struct {
				*wizard.Result
				Explanation *explain.Explanation `json:"explanation,omitempty"`
			}{res, note})
		}
		printSurveyResult(os.Stdout, *res, note)
		return nil
	},
}

func init() {
	assessCmd.Flags().String("answers", "", "YAML answers file (- for stdin)")
	_ = assessCmd.MarkFlagRequired("answers")
	assessCmd.Flags().Bool("json", false, "Print the result as JSON")
	assessCmd.Flags().Bool("explain", false, "Add a plain-language explanation from the configured LLM")
}

func readAnswers(path string) (answersFile, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return answersFile{}, fmt.Errorf("read answers: %w", err)
	}

	var in answersFile
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return answersFile{}, fmt.Errorf("parse answers %s: %w", path, err)
	}
	in.PersonalInfo.Gender = strings.ToLower(strings.TrimSpace(in.PersonalInfo.Gender))
	in.PersonalInfo.FamilyHistory = strings.ToLower(strings.TrimSpace(in.PersonalInfo.FamilyHistory))
	if in.PersonalInfo.FamilyHistory == "" {
		in.PersonalInfo.FamilyHistory = wizard.FamilyHistoryNo
	}
	return in, nil
}

// fillWizard walks the wizard to the last question the way the TUI does,
// so the same validation applies.
func fillWizard(w *wizard.Wizard, in answersFile) error {
	if err := w.SetPersonalInfo(in.PersonalInfo); err != nil {
		return err
	}
	for id, v := range in.Answers {
		if err := w.SetAnswer(id, v); err != nil {
			return err
		}
	}
	for !w.IsFinalStep() {
		if err := w.Next(); err != nil {
			return err
		}
	}
	return nil
}

// startSpinner shows a spinner on stderr when it is a terminal and
// returns the function that stops it.
func startSpinner(suffix string) func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func printSurveyResult(w io.Writer, r wizard.Result, note *explain.Explanation) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	headline := color.New(color.FgGreen, color.Bold)
	if r.NeedsTesting {
		headline = color.New(color.FgYellow, color.Bold)
	}
	_, _ = headline.Fprintln(w, wizard.Headline(r))
	_, _ = dim.Fprintf(w, "Confidence: %.0f%%\n\n", r.Confidence*100)
	fmt.Fprintln(w, r.Recommendation)
	fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "NEXT STEPS")
	for _, step := range wizard.NextSteps(r) {
		fmt.Fprintf(w, "  • %s\n", step)
	}

	if note != nil {
		fmt.Fprintln(w)
		_, _ = bold.Fprintln(w, "WHAT THIS MEANS")
		fmt.Fprintln(w, note.Summary)
		for _, tip := range note.Tips {
			fmt.Fprintf(w, "  • %s\n", tip)
		}
	}

	fmt.Fprintln(w)
	_, _ = dim.Fprintln(w, wizard.Disclaimer)
}
