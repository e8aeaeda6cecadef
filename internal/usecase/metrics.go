package usecase

import domrepo "SignalDesk/internal/domain/repository"

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string)     {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordLastPrice(string, float64)      {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordDesync(string)                  {}
func (nopMetrics) RecordBookUpdate(string, string)      {}
func (nopMetrics) RecordScore(string, float64, float64) {}

var _ domrepo.Metrics = nopMetrics{}
