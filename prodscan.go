// Package prodscan provides a web service that extracts candidate
// product-name strings from a single web page and ranks them by the
// likelihood that they name a product, using a named-entity classifier
// as an oracle.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., http/,
// goquery/, onnx/); pipeline orchestration lives in analyze/.
package prodscan
