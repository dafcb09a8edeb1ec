// Package vqgo provides a trainable vector quantizer with a learned codebook.
//
// Vqgo implements the discrete-bottleneck building block used by VQ-style
// autoencoders: continuous embedding vectors are snapped to their nearest
// entry in a finite codebook, producing integer code assignments, quantized
// vectors, and the two auxiliary losses (codebook + commitment) that train
// both the codebook and the upstream encoder.
//
// Features:
//
//   - Nearest-code assignment via the expanded squared-L2 form
//     (per-row norms + one cross-product pass, no per-pair rescan)
//   - Deterministic lowest-index tie-breaking for reproducible assignments
//   - Straight-through gradient rule with hand-written backward pass
//     (no autodiff dependency)
//   - Seeded uniform or k-means codebook initialization
//   - Apply-gradient optimizers (SGD, Adam) decoupled from the quantizer
//   - Compact code-grid codec with optional LZ4/ZSTD block compression
//   - Codebook usage telemetry (dead codes, perplexity) backed by
//     Roaring Bitmaps
//
// # Quick Start
//
// Create a quantizer with a 64-entry codebook over 16-dimensional vectors:
//
//	vq, err := vqgo.New(16, 64,
//	    vqgo.WithBeta(0.25),
//	    vqgo.WithRandSource(rand.NewSource(42)),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
// Quantize a flat batch (trailing dimension 16) and backpropagate:
//
//	res, err := vq.Quantize(encoderOut)
//	if err != nil {
//	    panic(err)
//	}
//	decoderIn := res.Output()              // quantized values, identity gradient
//	loss := reconLoss + res.Loss()         // res.Loss() = codebook + beta*commitment
//
//	encGrad, _ := res.Backward(decoderGrad) // straight-through + commitment term
//	opt.Step(vq.Codebook().Weights(), vq.Codebook().Grad())
//	vq.Codebook().ZeroGrad()
//
// # Training the Codebook
//
// The quantizer itself is a pure transform: the codebook is mutated only by
// an external optimizer consuming the gradient buffer that Backward fills.
// See the optimizer package for SGD and Adam implementations.
//
// # Concurrency
//
// Assign and Quantize are pure functions of the input and the current
// codebook and may run concurrently with each other. They must not run
// concurrently with an optimizer step mutating the same codebook
// (single-writer, call-and-return usage).
package vqgo
