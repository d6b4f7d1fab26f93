package schedule

import (
	"time"
)

// OrderLine carries every input the date computations need. Callers
// assemble it from the order, warehouse and shipping partner; nothing is
// looked up implicitly.
type OrderLine struct {
	// CustomerLead is the promised delay in days between order and
	// delivery. It includes SecurityLead.
	CustomerLead float64

	// SecurityLead is the company-level buffer in days between
	// preparation and delivery. Never subject to calendar skipping.
	SecurityLead float64

	// CommitmentDate, when set, is a delivery promise that must be
	// honored; it switches the computation to the backward mode.
	CommitmentDate *time.Time

	// Calendar is the warehouse working calendar. Nil skips calendar
	// projection entirely.
	Calendar WorkingCalendar

	// Cutoff is the daily order cutoff. Nil skips cutoff adjustment.
	Cutoff *CutoffSpec

	// Preference is the shipping partner's delivery time preference.
	Preference ShippingPreference

	// Windows are the partner's delivery windows, used only with
	// PrefTimeWindows for procurement and with any non-anytime
	// preference for the expected date.
	Windows DeliveryWindows
}

// delays returns (customerLead, securityLead, workload) where workload
// is the preparation time: customer lead minus security lead.
func (l OrderLine) delays() (float64, float64, float64) {
	customer := l.CustomerLead
	security := l.SecurityLead
	return customer, security, customer - security
}

// InitialEstimate derives the pipelines' starting point from the order
// date: the naive delivery moment before any calendar, cutoff or window
// adjustment, which is the order date plus the customer lead.
func (l OrderLine) InitialEstimate(orderDate time.Time) time.Time {
	return orderDate.Add(days(l.CustomerLead))
}

// delayToDays converts a delay into a day count for PlanDays: a zero
// delay still occupies one working day.
func delayToDays(delay float64) int {
	return int(delay) + 1
}

func days(f float64) time.Duration {
	return time.Duration(f * 24 * float64(time.Hour))
}

// ProcurementDates is the planning output for one order line.
// DatePlanned is when preparation must start; DateDeadline is the
// promised delivery moment.
type ProcurementDates struct {
	DatePlanned  time.Time `json:"datePlanned"`
	DateDeadline time.Time `json:"dateDeadline"`
}

// Result is the partial planned/deadline pair threaded through stages.
// A nil Planned makes every stage a no-op.
type Result struct {
	Planned  *time.Time
	Deadline *time.Time
}

// Stage is one adjustment step of the procurement pipeline.
type Stage func(line OrderLine, res Result) (Result, error)

// procurementStages is the fixed evaluation order. Later stages assume
// the earlier adjustments already happened; never reorder.
var procurementStages = []Stage{
	removeLead,
	applyCutoff,
	projectCalendar,
	applyWindows,
}

// ComputeProcurementDates computes the planned and deadline dates for a
// line. initialPlanned is the upstream naive estimate: order date plus
// customer lead.
func ComputeProcurementDates(line OrderLine, initialPlanned time.Time) (ProcurementDates, error) {
	if line.CommitmentDate != nil {
		return commitmentDates(line)
	}

	initial := initialPlanned.UTC()
	res := Result{Planned: &initial, Deadline: &initial}
	for _, stage := range procurementStages {
		var err error
		res, err = stage(line, res)
		if err != nil {
			return ProcurementDates{}, err
		}
	}

	out := ProcurementDates{DatePlanned: *res.Planned, DateDeadline: *res.Planned}
	if res.Deadline != nil {
		out.DateDeadline = *res.Deadline
	}
	return out, nil
}

// commitmentDates honors a committed delivery promise: the deadline is
// the commitment itself, the planned date walks backward from it.
func commitmentDates(line OrderLine) (ProcurementDates, error) {
	deadline := line.CommitmentDate.UTC()
	planned := deadline.Add(-days(line.SecurityLead))

	if line.Calendar != nil {
		// Walk back one day at a time until preparation lands on a
		// working day. Bounded for degenerate calendars.
		for i := 0; i < 366 && !line.Calendar.IsWorkingDay(planned); i++ {
			planned = planned.AddDate(0, 0, -1)
		}
	}

	if line.Cutoff != nil {
		// The committed day must not shift even when the cutoff already
		// passed; the transfer is simply late.
		adjusted, err := line.Cutoff.Apply(planned, true)
		if err != nil {
			return ProcurementDates{}, err
		}
		planned = adjusted
	}

	return ProcurementDates{DatePlanned: planned, DateDeadline: deadline}, nil
}

// removeLead undoes the customer lead minus security lead that upstream
// order-date arithmetic already added to the naive planned date.
func removeLead(line OrderLine, res Result) (Result, error) {
	if res.Planned == nil {
		return res, nil
	}
	_, _, workload := line.delays()
	planned := res.Planned.Add(-days(workload))
	res.Planned = &planned
	res.Deadline = &planned
	return res, nil
}

// applyCutoff snaps the planned date to the daily cutoff, rolling to the
// next day when the cutoff already passed.
func applyCutoff(line OrderLine, res Result) (Result, error) {
	if res.Planned == nil || line.Cutoff == nil {
		return res, nil
	}
	planned, err := line.Cutoff.Apply(*res.Planned, line.CommitmentDate != nil)
	if err != nil {
		return res, err
	}
	res.Planned = &planned
	res.Deadline = &planned
	return res, nil
}

// projectCalendar pushes the planned date through the warehouse working
// calendar and derives the deadline by adding the security lead, which
// deliberately ignores the calendar.
func projectCalendar(line OrderLine, res Result) (Result, error) {
	if res.Planned == nil || line.Calendar == nil {
		return res, nil
	}
	_, security, workload := line.delays()
	planned := line.Calendar.PlanDays(delayToDays(workload), *res.Planned, true)
	deadline := planned.Add(days(security))
	res.Planned = &planned
	res.Deadline = &deadline
	return res, nil
}

// applyWindows postpones the deadline to the partner's next delivery
// window. The security lead is peeled off so the window comparison uses
// the actual delivery moment, then put back.
func applyWindows(line OrderLine, res Result) (Result, error) {
	if res.Planned == nil && res.Deadline == nil {
		return res, nil
	}
	if line.Preference != PrefTimeWindows || line.CommitmentDate != nil {
		// With a commitment date, lead time and windows were already
		// considered by whoever committed.
		return res, nil
	}
	if res.Planned == nil || line.Windows.Empty() {
		return res, nil
	}

	_, security, _ := line.delays()
	deliveryAt := res.Planned.Add(days(security))
	next := line.Windows.NextStart(deliveryAt)
	candidate := next.Add(-days(security))

	if candidate.Equal(*res.Planned) {
		return res, nil
	}

	if line.Cutoff != nil {
		// The correct day is already computed; only normalize the
		// time-of-day.
		adjusted, err := line.Cutoff.Apply(candidate, true)
		if err != nil {
			return res, err
		}
		candidate = adjusted
	}
	res.Deadline = &candidate
	return res, nil
}

// ComputeExpectedDate computes the delivery date shown to the customer.
// initialExpected is the upstream estimate: order date plus customer
// lead. The cutoff, calendar and window sub-routines are shared with the
// procurement pipeline.
//
// Calendar projection uses a workload of one day plus customer lead plus
// security lead and restores the customer lead afterward. The sibling
// procurement pipeline counts workload as customer lead minus security
// lead plus one; the two disagree in the original modules and the
// expected-date variant is the one fixed by the reference scenarios.
func ComputeExpectedDate(line OrderLine, initialExpected time.Time) (time.Time, error) {
	expected := initialExpected.UTC()

	if line.Cutoff != nil {
		adjusted, err := line.Cutoff.Apply(expected, false)
		if err != nil {
			return time.Time{}, err
		}
		expected = adjusted
	}

	if line.Calendar != nil {
		customer, security, _ := line.delays()
		// Remove the customer lead added upstream, project the full
		// workload across working days, then add the lead back.
		expected = expected.Add(-days(customer))
		expected = line.Calendar.PlanDays(delayToDays(customer+security), expected, true)
		expected = expected.Add(days(customer))
	}

	if line.Preference != PrefAnytime && line.Preference != "" && !line.Windows.Empty() {
		expected = line.Windows.NextStart(expected)
	}

	return expected, nil
}
