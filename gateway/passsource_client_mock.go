package gateway

import (
	"context"
	"sync"

	"walletpass/entity"
)

type PassSourceMock struct {
	mock sync.Mutex

	CreatedPasses []entity.CreatePassRequest
	Verifications int

	// CreateErr, when set, is returned by every CreatePass call.
	CreateErr error
	VerifyErr error

	// OmitSerialNumber makes CreatePass answer without serial numbers.
	OmitSerialNumber bool
}

func (c *PassSourceMock) CreatePass(ctx context.Context, request entity.CreatePassRequest) (entity.CreatePassResponse, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.CreateErr != nil {
		return entity.CreatePassResponse{}, c.CreateErr
	}

	c.CreatedPasses = append(c.CreatedPasses, request)

	resp := entity.CreatePassResponse{
		PassURL: "https://passsource.test/pass/" + request.SerialNumber,
	}
	if !c.OmitSerialNumber {
		resp.SerialNumber = request.SerialNumber
		resp.HashedSerialNumber = "hashed-" + request.SerialNumber
	}

	return resp, nil
}

func (c *PassSourceMock) VerifyCredentials(ctx context.Context, clientHash, templateHash string) (entity.VerifyResult, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.Verifications++

	if c.VerifyErr != nil {
		return entity.VerifyResult{}, c.VerifyErr
	}

	return entity.VerifyResult{
		OK:           true,
		Message:      "API credentials verified successfully",
		TemplateInfo: map[string]any{"name": "mock template"},
	}, nil
}

func (c *PassSourceMock) CreatedPassesCount() int {
	c.mock.Lock()
	defer c.mock.Unlock()

	return len(c.CreatedPasses)
}
