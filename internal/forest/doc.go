// Package forest implements random-forest ensembles of CART trees.
//
// [Classifier] and [Regressor] share the [Trainer] contract. The classifier
// maps arbitrary numeric labels to class indices on Fit and back on Predict,
// so callers never handle categorical encodings. Tree i is grown from seed
// Config.Seed + i; trees are fitted concurrently but the fitted ensemble does
// not depend on scheduling.
package forest
