// Package report renders valve.Report values for people and machines.
//
//	text  line-per-valve report for terminals and the web form
//	json  the Report struct as indented JSON
//	prom  Prometheus text exposition, one gauge sample per valve
//
// Every renderer formats percentages with exactly Report.Decimals digits so
// the output never shows more precision than was computed.
package report
