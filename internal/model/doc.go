// Package model implements the purchase classifier. Categorical features are
// one-hot encoded with scigo's preprocessing encoder and the L2-regularized
// logistic regression is fitted by scigo's lbfgs solver. Scoring runs over
// row chunks in parallel.
package model
