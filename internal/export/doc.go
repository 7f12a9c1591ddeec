// Package export renders scene frames to image files with gonum/plot.
package export
