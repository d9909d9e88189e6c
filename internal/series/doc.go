// Package series holds the in-memory time series behind the dashboard.
//
// Each channel key maps to a Buffer, a fixed-size rolling window of samples.
// The Registry demultiplexes routed samples into those buffers and hands
// readers copies, never live slices:
//
//	reg := series.NewRegistry(100)
//	reg.Route("tempA", series.Sample{Time: 1700000000000, Value: 21.5})
//	view := reg.SnapshotAll() // map[Key][]Sample, safe to keep
//
// Within a channel, samples older than the newest accepted one are dropped
// rather than inserted out of order.
package series
