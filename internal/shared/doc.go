// Package shared holds code used across kpistats packages that belongs to no
// single layer. Today that is only testutil: log capture, KPI fixtures and a
// fake KPI source server for tests.
package shared
