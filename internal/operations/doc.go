// Package operations orchestrates one mirror run.
//
// A run is four steps executed strictly in order, each consuming the
// previous step's result:
//
//	fetch      listing URL      -> scraper.Page
//	extract    scraper.Page     -> scraper.ReleaseLink
//	download   ReleaseLink      -> download.Result (staged workbook)
//	transpose  staged workbook  -> dataprocessing.Summary (output file)
//
// Every step runs in its own OpenTelemetry span, records its duration and
// outcome in the pipeline metrics and keeps a StepState. The first failure
// stops the run; later steps are marked skipped and the error is returned
// wrapped in a StepError naming the step.
//
// Example usage:
//
//	p := operations.NewDefaultPipeline(cfg, paths, tel, logger)
//	result, err := p.Run(ctx)
//	if err != nil {
//	    os.Exit(apperrors.ExitCode(err))
//	}
package operations
