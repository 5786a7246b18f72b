package main

import (
	"context"
	"fmt"
	"os"

	"vehicle-damage-analyzer/internal/damage"
	"vehicle-damage-analyzer/internal/imageio"
	"vehicle-damage-analyzer/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		os.Exit(1)
	}

	img, err := imageio.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	gemini, err := model.NewGemini(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini client: %v\n", err)
		os.Exit(1)
	}

	analysis, err := damage.NewAnalyzer(gemini).Analyze(ctx, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		os.Exit(1)
	}

	printAnalysis(analysis)
}

func printAnalysis(a *damage.DamageAnalysis) {
	fmt.Printf("Damages found: %d\n", len(a.Damages))
	for i, d := range a.Damages {
		fmt.Printf("\n[%d] %s (%s)\n", i+1, d.DamageType, d.Severity)
		fmt.Printf("    Location:   %s\n", d.Location)
		fmt.Printf("    Estimate:   INR %.0f\n", d.EstimatedCostINR)
		fmt.Printf("    Confidence: %.2f\n", d.ConfidenceScore)
		fmt.Printf("    %s\n", d.Explanation)
	}
	fmt.Printf("\nTotal estimated cost: INR %.0f\n", a.TotalEstimatedCostINR)
	for _, f := range a.CostFactors {
		fmt.Printf("  - %s\n", f)
	}
}
