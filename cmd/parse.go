package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/parcelops/pickup-cli/internal/model"
)

var (
	parseAddress  string
	parseSegments bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse one raw pickup address",
	Long: `Splits a free-form pickup address into the two reservation form values:
the searchable road address and the free-text detail address.

Example:
  pickup-cli parse --address "서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if parseAddress == "" {
			return eris.New("parse: --address is required")
		}

		p, err := newProcessor()
		if err != nil {
			return err
		}

		segs := p.Parser().Classifier().Classify(parseAddress)
		parsed := p.Parser().Assemble(segs)

		out := struct {
			model.ParsedAddress
			Segments []model.Segment `json:"segments,omitempty"`
		}{ParsedAddress: parsed}
		if parseSegments {
			out.Segments = segs
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return eris.Wrap(enc.Encode(out), "parse: encode output")
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseAddress, "address", "", "raw pickup address")
	parseCmd.Flags().BoolVar(&parseSegments, "segments", false, "include classified segments in the output")
	rootCmd.AddCommand(parseCmd)
}
