/*
Copyright © 2025 the SLUG authors.
This file is part of SLUG.

SLUG is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SLUG is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SLUG.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package risk holds a collection of functions for screening-level
// estimates of human exposure and risk from contaminated drinking
// water.
package risk

// DaysPerYear converts exposure frequencies and averaging times
// between days and years.
const DaysPerYear = 365

// Exposure describes a drinking-water intake scenario following:
//
// U.S. EPA (1989). Risk Assessment Guidance for Superfund, Volume I:
// Human Health Evaluation Manual (Part A). EPA/540/1-89/002,
// Office of Emergency and Remedial Response, Washington, DC.
type Exposure struct {
	// IngestionRate is the drinking water intake [L/day].
	IngestionRate float64

	// BodyWeight is the receptor body weight [kg].
	BodyWeight float64

	// Frequency is the exposure frequency [day/year].
	Frequency float64

	// Duration is the exposure duration [year].
	Duration float64

	// AveragingTime is the period the dose is averaged over [year].
	// For noncancer effects it equals the exposure duration; for
	// carcinogens it is the receptor lifetime.
	AveragingTime float64

	// Label is the name of the scenario.
	Label string
}

// CDI returns the chronic daily intake [mg/(kg·day)] for a
// drinking-water concentration c [mg/L]:
//
//	CDI = c·IR·EF·ED / (BW·AT·365)
func (e Exposure) CDI(c float64) float64 {
	return c * e.IngestionRate * e.Frequency * e.Duration /
		(e.BodyWeight * e.AveragingTime * DaysPerYear)
}

// Name returns the label for this scenario.
func (e Exposure) Name() string { return e.Label }

// Default is the RAGS default residential scenario: an adult drinking
// 2 L/day, 350 days a year, for 30 years, with the dose averaged over
// the exposure duration (the noncancer convention).
var Default = Exposure{
	IngestionRate: 2,
	BodyWeight:    70,
	Frequency:     350,
	Duration:      30,
	AveragingTime: 30,
	Label:         "ResidentialDefault",
}

// Lifetime is the RAGS default residential scenario with the dose
// averaged over a 70-year lifetime, as used for carcinogens.
var Lifetime = Exposure{
	IngestionRate: 2,
	BodyWeight:    70,
	Frequency:     350,
	Duration:      30,
	AveragingTime: 70,
	Label:         "ResidentialLifetime",
}

// Child is a smaller receptor drinking 1 L/day for 6 years, as used
// in residential child scenarios.
var Child = Exposure{
	IngestionRate: 1,
	BodyWeight:    15,
	Frequency:     350,
	Duration:      6,
	AveragingTime: 6,
	Label:         "ResidentialChild",
}

// An Intaker converts an environmental concentration to a chronic
// daily intake.
type Intaker interface {
	// CDI returns the chronic daily intake [mg/(kg·day)] for the
	// concentration c [mg/L].
	CDI(c float64) float64

	// Name returns the name of the scenario.
	Name() string
}

// HQ returns the noncancer hazard quotient for a chronic daily intake
// cdi [mg/(kg·day)] and an oral reference dose rfd [mg/(kg·day)].
// Quotients at or below 1 are considered unlikely to cause adverse
// noncancer effects.
func HQ(cdi, rfd float64) float64 {
	return cdi / rfd
}

// IELCR returns the incremental excess lifetime cancer risk for a
// chronic daily intake cdi [mg/(kg·day)] and an oral slope factor
// slope [(mg/(kg·day))⁻¹].
func IELCR(cdi, slope float64) float64 {
	return cdi * slope
}

// Cancer risk ranges used by the Superfund program when interpreting
// IELCR values.
const (
	// DeMinimisRisk is the risk level generally considered
	// negligible.
	DeMinimisRisk = 1e-6

	// UpperBoundRisk is the upper bound of the Superfund acceptable
	// risk range.
	UpperBoundRisk = 1e-4
)

// HQLevel interprets a hazard quotient.
func HQLevel(hq float64) string {
	if hq > 1 {
		return "potential for adverse noncancer effects"
	}
	return "adverse noncancer effects unlikely"
}

// RiskLevel interprets an incremental excess lifetime cancer risk
// against the Superfund acceptable risk range.
func RiskLevel(r float64) string {
	switch {
	case r > UpperBoundRisk:
		return "above the acceptable risk range"
	case r >= DeMinimisRisk:
		return "within the acceptable risk range"
	default:
		return "de minimis"
	}
}
