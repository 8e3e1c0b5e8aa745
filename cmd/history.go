package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/carescope/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past assessments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		if err := validKind(kind); err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.AssessmentRepo().Recent(cmd.Context(), store.QueryOpts{Limit: limit, Kind: kind})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No assessments recorded yet.")
			return nil
		}

		failed := color.New(color.FgRed)
		fmt.Printf("%-36s  %-19s  %-18s  %s\n", "ID", "Timestamp", "Kind", "Outcome")
		fmt.Println(strings.Repeat("─", 110))
		for _, r := range records {
			outcome := r.Summary
			if !r.Success {
				outcome = failed.Sprint("failed: " + r.ErrorMessage)
			}
			fmt.Printf("%-36s  %-19s  %-18s  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				store.KindLabel(r.Kind),
				outcome,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the request and response of one assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.AssessmentRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get assessment: %w", err)
		}
		if r == nil {
			return fmt.Errorf("assessment %s not found", args[0])
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %s\n", r.ID)
		fmt.Printf("Time:      %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Kind:      %s\n", store.KindLabel(r.Kind))
		fmt.Printf("Latency:   %dms\n", r.LatencyMs)
		fmt.Printf("Success:   %v\n", r.Success)
		if r.Summary != "" {
			fmt.Printf("Outcome:   %s\n", r.Summary)
		}
		if r.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", r.ErrorMessage)
		}
		for _, part := range []struct{ title, body string }{
			{"REQUEST", r.Request},
			{"RESPONSE", r.Response},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			fmt.Println(prettyJSON(part.body))
		}
		return nil
	},
}

func validKind(kind string) error {
	switch kind {
	case "", store.KindSymptomSurvey, store.KindThyroidLab, store.KindLung, store.KindBrainScan:
		return nil
	}
	return fmt.Errorf("unknown kind %q (want %s, %s, %s or %s)", kind,
		store.KindSymptomSurvey, store.KindThyroidLab, store.KindLung, store.KindBrainScan)
}

// prettyJSON indents body when it is JSON and returns it unchanged otherwise.
func prettyJSON(body string) string {
	if body == "" {
		return "(none)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return body
	}
	return buf.String()
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of assessments to show")
	historyCmd.Flags().StringP("kind", "k", "", "Filter by kind (symptom-survey, thyroid-lab, lung, brain-scan)")
	historyCmd.AddCommand(historyViewCmd)
}
