// Package labelkit is the core of a label designer: a retained scene of
// typed elements (text, shapes, images, QR codes, barcodes, UUIDs, groups)
// on a fixed-size canvas, with the geometry, grid snapping, rulers and
// export paths an editor front end needs.
//
// # Packages
//
//   - geom: points, rectangles, affine matrices, viewport mapping
//   - grid: grid configuration, tile geometry, snapping and smart guides
//   - ruler: units, tick layout and distance measurement
//   - model: objects, scenes, constructors and validation
//   - codec: the versioned JSON wire format
//   - canvas: the scene manager (selection, z-order, align, group,
//     interaction, viewport, dirty tracking, warnings)
//   - export: the format registry with PNG/JPEG, SVG and JSON encoders
//   - generate: QR code, barcode, UUID and image loading collaborators
//
// # Coordinate System
//
// Canvas coordinates are pixels at 96 DPI:
//   - Origin (0,0) at the top-left of the canvas
//   - X increases right
//   - Y increases down
//   - Angles in degrees, 0 is right, increasing clockwise on screen
//
// # Logging
//
// labelkit is silent by default. Call SetLogger to receive diagnostics
// from every sub-package.
package labelkit
