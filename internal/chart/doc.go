// Package chart draws aggregated views as PNG or SVG images with go-chart.
//
// Bar views become a chart.BarChart with one bar per group coloured from a
// named palette. Line views become a chart.Chart with one continuous series
// per value column, point markers and, when the ChartSpec names one, a titled
// legend.
package chart
