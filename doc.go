// Package iziml trains and evaluates regression models on tabular data.
//
// A run takes a delimited text table, keeps its numeric columns, drops rows
// with missing values, splits the rows into training and test partitions,
// fits either a random forest or an ordinary least squares model and reports
// how well it predicts the target (the last column).
//
// # Quick Start
//
//	table, err := dataset.ReadCSV(f)
//	if err != nil {
//	    return err
//	}
//	opts := config.Defaults()
//	opts.Algorithm = config.AlgorithmLinear
//	cfg, err := opts.ModelConfig()
//	if err != nil {
//	    return err
//	}
//	res, err := pipeline.Run(ctx, table, cfg)
//	if err != nil {
//	    fmt.Println(pipeline.UserMessage(err))
//	    return err
//	}
//	header, row := res.Evaluation.Table()
//
// # Packages
//
//   - dataset: CSV reading, validation and cleaning
//   - sklearn/model_selection: seeded train/test split
//   - sklearn/tree, sklearn/ensemble: CART regression trees and random forest
//   - linear: least squares linear regression
//   - metrics: MSE, R² and the results table
//   - artifact: zip archive of the cleaned data and partitions
//   - report: prediction and feature importance charts
//   - config: options from defaults, files, environment and flags
//   - pipeline: the end-to-end run
//
// The iziml command in cmd/iziml wraps a run for the terminal.
package iziml
