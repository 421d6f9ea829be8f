package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rulesPath string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimsctl",
	Short: "Claimsctl - triage insurance claim documents from the command line",
	Long: `Claimsctl runs the claim triage pipeline locally, without the API
server or the task queue: extract fields from a claim image, classify
the claim, check it against the policy rules and pick a workflow.

Useful for testing rule files before deploying them and for one-off
triage of individual documents.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("claimsctl v0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "claims.yaml", "rules file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("rules", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("CLAIMS")
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
}
