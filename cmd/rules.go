package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/media-import/internal/fieldmap"
	"github.com/sells-group/media-import/internal/role"
)

var (
	rulesTitle   string
	rulesAliases bool
	rulesWeights bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective keyword tables or infer a profile from a title",
	Long: `Without flags, prints the role rules in the YAML format accepted by
import.rules_path, ready to edit. With --aliases, prints the header alias table
instead. With --weights, prints the quality weights after import.scoring is
applied. With --title, prints what the engine infers for that title.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("rules"); err != nil {
			return err
		}
		env, err := buildPipeline(cfg.Import)
		if err != nil {
			return err
		}

		if rulesTitle != "" {
			return writeJSON("", inferTitle(role.New(env.Rules), rulesTitle))
		}
		if rulesAliases {
			return dumpYAML(aliasDocument(env.Aliases))
		}
		if rulesWeights {
			return dumpYAML(env.Weights)
		}
		return dumpYAML(env.Rules)
	},
}

type titleReport struct {
	Title     string       `json:"title"`
	Profile   role.Profile `json:"profile"`
	Relevance float64      `json:"relevance"`
	Matched   []string     `json:"matched_keywords"`
}

func inferTitle(engine *role.Engine, title string) titleReport {
	return titleReport{
		Title:     title,
		Profile:   engine.Infer(title),
		Relevance: engine.Relevance(title),
		Matched:   engine.MatchedRelevanceKeywords(title),
	}
}

// aliasDocument wraps aliases in the layout fieldmap.LoadAliases reads.
func aliasDocument(aliases fieldmap.Aliases) any {
	return struct {
		Fields fieldmap.Aliases `yaml:"fields"`
	}{aliases}
}

func dumpYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return eris.Wrap(enc.Close(), "encode yaml")
}

func init() {
	rulesCmd.Flags().StringVar(&rulesTitle, "title", "", "infer seniority, budget, specializations, and relevance for this title")
	rulesCmd.Flags().BoolVar(&rulesAliases, "aliases", false, "print the header alias table")
	rulesCmd.Flags().BoolVar(&rulesWeights, "weights", false, "print the effective quality score weights")
	rootCmd.AddCommand(rulesCmd)
}
