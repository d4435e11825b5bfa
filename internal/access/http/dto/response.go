// Package dto provides data transfer objects for the care team HTTP API.
package dto

import (
	"time"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
)

// CareTeamAssignmentResponse represents one care team member.
type CareTeamAssignmentResponse struct {
	PatientID   string    `json:"patient_id"`
	ClinicianID string    `json:"clinician_id"`
	AssignedBy  string    `json:"assigned_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListCareTeamResponse is the care team of a patient.
type ListCareTeamResponse struct {
	Data []CareTeamAssignmentResponse `json:"data"`
}

// MapAssignmentsToListResponse converts domain assignments to a list response.
func MapAssignmentsToListResponse(assignments []*accessDomain.CareTeamAssignment) ListCareTeamResponse {
	data := make([]CareTeamAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		data = append(data, CareTeamAssignmentResponse{
			PatientID:   a.PatientID.String(),
			ClinicianID: a.ClinicianID.String(),
			AssignedBy:  a.AssignedBy.String(),
			CreatedAt:   a.CreatedAt,
		})
	}
	return ListCareTeamResponse{Data: data}
}
