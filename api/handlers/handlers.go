package handlers

import (
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/service/claims"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

type Handlers struct {
	Claim *ClaimHandler
}

func NewHandlers(
	claimService claims.ClaimProcessor,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Claim: NewClaimHandler(claimService, log),
	}
}
