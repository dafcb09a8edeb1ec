// Package kmeans implements k-means clustering for codebook warm starts.
//
// Used internally by the codebook to seed its entries from a sample of
// encoder outputs instead of a uniform random draw.
package kmeans
