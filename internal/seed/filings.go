package seed

import (
	"context"
	"fmt"
	"os"

	"uccdatahub/internal/importer"
	"uccdatahub/pkg/types"
)

// sampleFilings mirrors a small North Carolina extract: enough rows to
// exercise the export pipeline end to end.
const sampleFilings = `Filing Number,Filing Date,Filing Type,Secured Party Name,Debtor Name,Official Designation
20240915001,09/15/2024,UCC-1,First Harvest Bank,Blue Ridge Outfitters LLC,Owner
20240916002,09/16/2024,UCC-1,Piedmont Equipment Finance,Carolina Mills Inc,CEO
20240917003,09/17/2024,Amendment,First Harvest Bank,Waxhaw Timber Co,Member
20240918004,09/18/2024,Initial,Coastal Credit Union,Outer Banks Seafood LLC,Founder
20240919005,09/19/2024,UCC-1,Piedmont Equipment Finance,Triangle Paving Partners,Manager
`

var sampleMapping = types.ColumnMapping{
	CommonColumns: []types.Column{
		{Content: "Filing Number"},
		{Content: "Filing Date"},
	},
	Table1Columns: []types.Column{
		{Content: "Filing Type"},
		{Content: "Secured Party Name"},
		{Content: "Debtor Name"},
	},
	Table2Columns: []types.Column{
		{Content: "Official Designation"},
	},
}

// SeedSampleFilings runs the sample extract through the real import
// pipeline so the seeded tables match what an admin upload produces.
func SeedSampleFilings(ctx context.Context, imp *importer.Importer) error {
	temp, err := os.CreateTemp("", "seed-filings-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	if _, err := temp.WriteString(sampleFilings); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	temp.Close()

	result, err := imp.Run(ctx, importer.Request{
		State:    "nc",
		Mapping:  sampleMapping,
		FilePath: temp.Name(),
	})
	if err != nil {
		return fmt.Errorf("failed to import seed filings: %w", err)
	}

	fmt.Printf("Sample filings seeded: %d rows into %v\n", result.RowsImported, result.Tables)
	return nil
}
