package cmd

import (
	"github.com/abhisek/carescope/internal/app"
	"github.com/spf13/cobra"
)

// runApp restores the saved session, builds the services and launches
// the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	e.restore(cmd)

	return app.Run(app.Options{
		Session: e.session,
		Predict: e.predict,
		Explain: e.explainer(cmd),
		History: e.store.AssessmentRepo(),
	})
}
