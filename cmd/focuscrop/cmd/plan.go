package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/menta2k/focuscrop"
	"github.com/menta2k/focuscrop/internal/utils"
)

// planCmd prints crop plans without writing images.
var planCmd = &cobra.Command{
	Use:   "plan [files|dirs|urls...]",
	Short: "Print the crop plan of images as JSON",
	Long: `Detect the subject of each image and print the computed crop as JSON,
one document per image. Nothing is written to disk.

The plan lists the detection attempts in order, the salient region that was
chosen and every intermediate rectangle of the crop computation.

Examples:
  focuscrop plan photo.jpg
  focuscrop plan photo.jpg --ratio 16:9 --methods attention`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	addPlanFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

type planOutput struct {
	Source string `json:"source"`
	*focuscrop.Plan
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := focuscrop.NewFromConfig(GetConfig())
	if err != nil {
		return err
	}

	inputs, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	for _, src := range inputs {
		img, err := svc.Processor().LoadImageSmart(ctx, src)
		if err != nil {
			return err
		}
		plan, err := svc.Plan(ctx, img)
		if err != nil {
			return err
		}
		if err := enc.Encode(planOutput{Source: src, Plan: plan}); err != nil {
			return err
		}
	}
	return nil
}
