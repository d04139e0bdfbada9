package handler

import (
	"time"

	"vouch/internal/credential/models"
	"vouch/internal/credential/service"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

type attributePayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type issueRequest struct {
	TemplateID     string             `json:"template_id"`
	SubjectName    string             `json:"subject_name"`
	SubjectContact string             `json:"subject_contact"`
	Course         string             `json:"course"`
	Attributes     []attributePayload `json:"attributes"`
	IssuedAt       *time.Time         `json:"issued_at,omitempty"`
}

// toService validates identifiers and maps to the service request. Field
// presence beyond identifiers is the service's concern.
func (r issueRequest) toService(issuerID id.IssuerID) (service.IssueRequest, error) {
	templateID, err := id.ParseTemplateID(r.TemplateID)
	if err != nil {
		return service.IssueRequest{}, err
	}
	attributes := make([]models.Attribute, 0, len(r.Attributes))
	for _, a := range r.Attributes {
		if a.Name == "" {
			return service.IssueRequest{}, dErrors.New(dErrors.CodeBadRequest, "attribute name is required")
		}
		attributes = append(attributes, models.Attribute{Name: a.Name, Value: a.Value})
	}
	return service.IssueRequest{
		IssuerID:       issuerID,
		TemplateID:     templateID,
		SubjectName:    r.SubjectName,
		SubjectContact: r.SubjectContact,
		Course:         r.Course,
		Attributes:     attributes,
		IssuedAt:       r.IssuedAt,
	}, nil
}

type revokeRequest struct {
	Reason string `json:"reason"`
}
