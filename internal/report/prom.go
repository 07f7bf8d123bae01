package report

import (
	"io"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// Metric names written by WriteProm.
const (
	MetricValvePercent = "valvecalc_valve_percent"
	MetricMachines     = "valvecalc_machines"
	MetricSplitPoint   = "valvecalc_split_point"
	MetricMachineRate  = "valvecalc_machine_rate"
)

// WriteProm renders rep as Prometheus text exposition so a report can be
// pushed to a Pushgateway or scraped from a textfile collector.
//
// Percent samples are labelled with valve (C1..), index and segment.
// The split point and per-machine rates are only written when their
// toggle is on.
func WriteProm(w io.Writer, rep *valve.Report) error {
	for _, mf := range Families(rep) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Families builds the metric families for rep.
func Families(rep *valve.Report) []*dto.MetricFamily {
	mode := modeName(rep)

	valves := &dto.MetricFamily{
		Name: proto.String(MetricValvePercent),
		Help: proto.String("Valve opening percentage, rounded to the report precision."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, v := range rep.Valves {
		valves.Metric = append(valves.Metric, gauge(v.Percent,
			label("index", strconv.Itoa(v.Index)),
			label("mode", mode),
			label("segment", string(v.Segment)),
			label("valve", v.Label),
		))
	}

	out := []*dto.MetricFamily{
		{
			Name:   proto.String(MetricMachines),
			Help:   proto.String("Total number of machines in the layout."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{gauge(float64(rep.MachineCount), label("mode", mode))},
		},
	}
	if rep.SplitPoint != nil {
		out = append(out, &dto.MetricFamily{
			Name:   proto.String(MetricSplitPoint),
			Help:   proto.String("Number of machines on the left branch of the split valve."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{gauge(float64(*rep.SplitPoint), label("mode", mode))},
		})
	}
	if rep.UnequalRates {
		rates := &dto.MetricFamily{
			Name: proto.String(MetricMachineRate),
			Help: proto.String("Consumption rate of each machine."),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		for i, r := range rep.Rates {
			rates.Metric = append(rates.Metric, gauge(r, label("machine", strconv.Itoa(i+1))))
		}
		out = append(out, rates)
	}
	return append(out, valves)
}

func modeName(rep *valve.Report) string {
	return valve.Config{Asymmetric: rep.Asymmetric, UnequalRates: rep.UnequalRates}.Mode()
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}
