// Package imaging turns images into colors.
//
// It covers the path from a photo to the single RGB value that is then
// matched against a palette: decoding and caching image files, converting
// them to raw pixel buffers, averaging a clicked region, and estimating the
// dominant color of a whole image.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// For regions, (X1,Y1) is inclusive and (X2,Y2) is exclusive.
//
// # Sampling
//
// AverageRegion and SampleAround clamp their rectangle to the image before
// averaging, so a click near an edge samples the part of the square that
// lies inside the image. A rectangle that ends up with no pixels returns
// ErrDegenerateRegion instead of dividing by zero.
//
// DominantColor is a filtered average: near-white and near-black pixels
// are treated as background and skipped. Extract builds on it, resizing
// the image first and optionally clustering with k-means instead.
//
// # Previews
//
// Crop renders a sampled region and Grid draws a labeled coordinate grid
// over a whole image. Both return a base64 PNG so the result can be sent
// inside a JSON response.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Everything else is stateless.
package imaging
