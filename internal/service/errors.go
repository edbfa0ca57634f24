package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrJobNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

func NewErrProNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "pro")
}

type ErrOfferNotFound struct {
	error
}

func NewErrOfferNotFound(jobID, proID uuid.UUID) *ErrOfferNotFound {
	return &ErrOfferNotFound{fmt.Errorf("no offer for job %s and pro %s", jobID, proID)}
}

type ErrDuplicateOffer struct {
	error
}

func NewErrDuplicateOffer(jobID, proID uuid.UUID) *ErrDuplicateOffer {
	return &ErrDuplicateOffer{fmt.Errorf("an open offer for job %s and pro %s already exists", jobID, proID)}
}

type ErrInvalidTransition struct {
	error
}

func NewErrInvalidTransition(jobID, proID uuid.UUID, from, to string) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("assignment for job %s and pro %s cannot move from %s to %s", jobID, proID, from, to)}
}

func NewErrJobNotOfferable(jobID uuid.UUID, status string) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("job %s in status %s cannot receive offers", jobID, status)}
}

type ErrForbidden struct {
	error
}

func NewErrOfferForbidden(proID uuid.UUID) *ErrForbidden {
	return &ErrForbidden{fmt.Errorf("pro %s cannot act on another pro's offer", proID)}
}
