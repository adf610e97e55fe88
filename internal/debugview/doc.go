// Package debugview renders simulation runs for inspection: top-down PNG
// frames with gonum/plot and an interactive HTML report with go-echarts.
package debugview
