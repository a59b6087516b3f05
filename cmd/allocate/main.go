package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"loan_allocator/internal/adapters/opener"
	"loan_allocator/internal/adapters/saver"
	"loan_allocator/internal/services/allocator"
)

// Local one-shot allocation: reconcile a collected payments sheet
// against a submission sheet and write the result workbook, no
// external services involved.
func main() {
	submission := flag.String("submission", "", "submission spreadsheet (.xlsx or .csv)")
	collected := flag.String("collected", "", "collected payments spreadsheet (.xlsx or .csv)")
	out := flag.String("out", "output.xlsx", "output spreadsheet path")
	flag.Parse()

	if *submission == "" || *collected == "" {
		fmt.Fprintln(os.Stderr, "both -submission and -collected are required")
		flag.Usage()
		os.Exit(2)
	}

	svc := allocator.NewService(
		&opener.CompoundOpener{Local: opener.NewLocalOpener()},
		&saver.CompoundSaver{Local: saver.NewLocalSaver()},
	)

	res, err := svc.Allocate(context.Background(), allocator.Request{
		SubmissionPath: *submission,
		CollectedPath:  *collected,
		OutputPath:     *out,
	})
	if err != nil {
		log.Fatalf("allocation failed: %v", err)
	}

	s := res.Summary
	fmt.Printf("Processed %d records (%d payments, %d rows skipped) in %s\n",
		s.Records, s.Payments, s.SkippedRows, res.Duration.Round(time.Millisecond))
	fmt.Printf("Total instalment:    %s\n", s.TotalInstalment)
	fmt.Printf("Total paid:          %s\n", s.TotalPaid)
	fmt.Printf("Total collected:     %s\n", s.TotalCollected)
	fmt.Printf("Allocated this run:  %s\n", s.TotalAllocated)
	fmt.Printf("Unallocated balance: %s\n", s.Unallocated)
	fmt.Printf("Output saved to %s\n", *out)
}
