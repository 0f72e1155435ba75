package domain

// ModerationResult partitions a moderated batch for the organizer to
// render. Order inside each slice follows the supplied request order.
type ModerationResult struct {
	Confirmed []*ParticipationRequest
	Rejected  []*ParticipationRequest
}

// ResolveModeration applies an organizer's batch decision to requests,
// mutating both the requests and ev.ConfirmedRequests. Requests must be
// passed in the order the organizer supplied them: that order is the
// tie-break for who gets the remaining seats. Each request must appear
// exactly once; callers deduplicate the batch before building it.
//
// The policy is strictly all-or-nothing. Any request that is not PENDING
// aborts the whole batch before anything is considered committed; the
// caller must then roll back. With a CONFIRMED decision, seats are filled
// until the limit is hit and every remaining request flips to REJECTED, so
// one call can legitimately return a mixed partition.
//
// Like AdmitRequest, this must run under the event row lock so the batch
// and a concurrent registration cannot jointly exceed the limit.
func ResolveModeration(ev *Event, requests []*ParticipationRequest, decision RequestStatus) (*ModerationResult, error) {
	if decision != RequestConfirmed && decision != RequestRejected {
		return nil, ErrValidationMeta("unsupported moderation decision", map[string]string{
			"status": string(decision),
		})
	}
	if ev.ParticipantLimit > 0 && ev.ConfirmedRequests >= ev.ParticipantLimit {
		return nil, ErrConflict("the event has reached participant limit")
	}

	for _, req := range requests {
		if req.Status != RequestPending {
			return nil, ErrConflict("request must have status PENDING")
		}
	}

	res := &ModerationResult{}
	for _, req := range requests {
		if decision == RequestConfirmed && ev.ConfirmedRequests < ev.ParticipantLimit {
			req.Status = RequestConfirmed
			ev.ConfirmedRequests++
			res.Confirmed = append(res.Confirmed, req)
			continue
		}
		req.Status = RequestRejected
		res.Rejected = append(res.Rejected, req)
	}
	return res, nil
}
