// Package chart describes and renders report charts.
//
// A Spec is a plain description of one chart (kind, title, points, colour
// scale and a few styling options). Reports build Specs without knowing how
// they will be drawn; Renderers turn them into output. PNGRenderer draws
// with gonum/plot, Recorder keeps Specs in memory and MultiRenderer fans a
// Spec out to several renderers.
//
// Continuous colour scales implement gonum's palette.ColorMap, so the
// CARTO scales defined here and gonum's own moreland and brewer maps are
// interchangeable.
package chart
