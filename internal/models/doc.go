// Package models implements the trajectory simulators used to build
// benchmark datasets. Every simulator satisfies [diffusion.Generator] and
// returns positions sampled at unit time steps starting from x0 = 0.
//
// Supported exponent ranges:
//
//	fbm   fractional Brownian motion       0 < alpha < 2
//	sbm   scaled Brownian motion           0 < alpha <= 2
//	ctrw  continuous-time random walk      0 < alpha <= 1
//	lw    Levy walk                        1 <= alpha <= 2
package models
