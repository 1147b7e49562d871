package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gatheredNames(reg *prometheus.Registry) map[string]struct{} {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]struct{}, len(families))
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}
	return names
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.scoringLatency.Observe(1)
			manager.recordsStored.Inc()

			Convey("Then metrics use the default namespace and subsystem", func() {
				So(manager, ShouldNotBeNil)
				names := gatheredNames(registry)
				So(names, ShouldContainKey, "goalwatch_engine_scoring_latency_milliseconds")
				So(names, ShouldContainKey, "goalwatch_engine_records_stored_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.liveUpdates.Inc()

			Convey("Then names and constant labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_unit_live_updates_total" {
						continue
					}
					found = true
					labels := f.GetMetric()[0].GetLabel()
					So(labels, ShouldHaveLength, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "goalwatch")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording scoring metrics", func() {
			So(func() {
				RecordScoringRequest("hybrid")
				RecordScoringRequest("historical")
				RecordConfidence("EXCELLENT")
				RecordConfidence("LOW")
				RecordValidationFailure("interval")
				RecordScoringLatency(0.4)
				RecordProbability("entity", 0.63)
				RecordProbability("union", 0.0975)
				RecordScoringError()
			}, ShouldNotPanic)

			Convey("Then they are exposed on the custom registry", func() {
				names := gatheredNames(GetRegistry())
				So(names, ShouldContainKey, "goalwatch_engine_scoring_requests_total")
				So(names, ShouldContainKey, "goalwatch_engine_scoring_confidence_total")
				So(names, ShouldContainKey, "goalwatch_engine_scoring_probability")
			})
		})

		Convey("When recording ingestion and repository metrics", func() {
			So(func() {
				RecordRecordAccepted()
				RecordRecordDuplicate()
				RecordRecordRejected()
				RecordRecordStored()
				UpdateRepositoryRecordsTotal(120)
				UpdateProfilesTotal(720)
				RecordProfileRebuildDuration(3)
				UpdateProfileRebuildLastDurationMs(3)
				UpdateProfileRebuildLastUnix(1.7e9)
				IncrementProfileRebuildCount()
				RecordRepositoryUpdateLatency(1)
				RecordRepositoryQueryLatency(0.2)
				UpdateLiveSnapshots(4)
				RecordLiveUpdate()
			}, ShouldNotPanic)

			Convey("Then the profile gauges are exposed", func() {
				names := gatheredNames(GetRegistry())
				So(names, ShouldContainKey, "goalwatch_engine_repository_profiles_total")
				So(names, ShouldContainKey, "goalwatch_engine_profile_rebuild_count_total")
			})
		})

		Convey("When recording queue, worker and HTTP metrics", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.5)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				UpdateWorkerIdleCount(2)
				RecordWorkerProcessingLatency(1.5)
				RecordWorkerError()
				RecordHTTPRequest("/score", "POST", "200")
				RecordHTTPRequestDuration("/score", "POST", "200", 2)
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByEndpoint("/score", "POST", "validation_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric updates", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordScoringRequest("hybrid")
					RecordProbability("entity", 0.5)
					UpdateQueueSize(j)
				}
			}()
		}

		Convey("Then nothing panics and gathering succeeds", func() {
			wg.Wait()
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
