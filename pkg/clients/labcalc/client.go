package labcalc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/labcalc/internal/config"
	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
	"github.com/mamadbah2/labcalc/internal/service/seeding"
)

// Client exposes the labcalc HTTP API.
type Client interface {
	Dilution(ctx context.Context, req models.DilutionRequest) (models.DilutionResult, error)
	Molarity(ctx context.Context, req models.MolarityRequest) (models.MolarityResult, error)
	Reconstitution(ctx context.Context, req models.ReconstitutionRequest) (models.ReconstitutionResult, error)
	MassVolume(ctx context.Context, req models.MassVolumeRequest) (models.MassVolumeResult, error)
	CellSeeding(ctx context.Context, req models.CellSeedingRequest) (models.CellSeedingResult, error)
	PlateSeeding(ctx context.Context, req models.PlateSeedingRequest) (models.PlateSeedingResult, error)
	SerialDose(ctx context.Context, req models.SerialDoseRequest) (models.DilutionPlan, error)
	SerialDilution(ctx context.Context, req models.SerialDilutionRequest) (models.DilutionPlan, error)
	Units(ctx context.Context) ([]calculator.UnitTable, error)
	Plates(ctx context.Context) ([]seeding.PlatePreset, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an API client using the provided configuration values.
func NewClient(cfg config.ClientConfig) *APIClient {
	base := strings.TrimSuffix(cfg.ServerURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base+"/api/v1").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// apiError mirrors the error payload of the server.
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field"`
}

func (c *APIClient) Dilution(ctx context.Context, req models.DilutionRequest) (models.DilutionResult, error) {
	return post[models.DilutionResult](ctx, c, "dilution", req)
}

func (c *APIClient) Molarity(ctx context.Context, req models.MolarityRequest) (models.MolarityResult, error) {
	return post[models.MolarityResult](ctx, c, "molarity", req)
}

func (c *APIClient) Reconstitution(ctx context.Context, req models.ReconstitutionRequest) (models.ReconstitutionResult, error) {
	return post[models.ReconstitutionResult](ctx, c, "reconstitution", req)
}

func (c *APIClient) MassVolume(ctx context.Context, req models.MassVolumeRequest) (models.MassVolumeResult, error) {
	return post[models.MassVolumeResult](ctx, c, "mass-volume", req)
}

func (c *APIClient) CellSeeding(ctx context.Context, req models.CellSeedingRequest) (models.CellSeedingResult, error) {
	return post[models.CellSeedingResult](ctx, c, "cell-seeding", req)
}

func (c *APIClient) PlateSeeding(ctx context.Context, req models.PlateSeedingRequest) (models.PlateSeedingResult, error) {
	return post[models.PlateSeedingResult](ctx, c, "plate-seeding", req)
}

func (c *APIClient) SerialDose(ctx context.Context, req models.SerialDoseRequest) (models.DilutionPlan, error) {
	return post[models.DilutionPlan](ctx, c, "serial-dose", req)
}

func (c *APIClient) SerialDilution(ctx context.Context, req models.SerialDilutionRequest) (models.DilutionPlan, error) {
	return post[models.DilutionPlan](ctx, c, "serial-dilution", req)
}

func (c *APIClient) Units(ctx context.Context) ([]calculator.UnitTable, error) {
	result := new(struct {
		Tables []calculator.UnitTable `json:"tables"`
	})
	if err := c.get(ctx, "units", result); err != nil {
		return nil, err
	}
	return result.Tables, nil
}

func (c *APIClient) Plates(ctx context.Context) ([]seeding.PlatePreset, error) {
	result := new(struct {
		Plates []seeding.PlatePreset `json:"plates"`
	})
	if err := c.get(ctx, "plates", result); err != nil {
		return nil, err
	}
	return result.Plates, nil
}

func post[T any](ctx context.Context, c *APIClient, path string, body any) (T, error) {
	var zero T
	result := new(T)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return zero, fmt.Errorf("labcalc %s: %w", path, err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return zero, err
	}
	return *result, nil
}

func (c *APIClient) get(ctx context.Context, path string, result any) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("labcalc %s: %w", path, err)
	}
	return checkResponse(resp, apiErr)
}

// checkResponse turns a 422 back into the *models.CalcError the server
// reported and any other failure status into a plain error.
func checkResponse(resp *resty.Response, apiErr *apiError) error {
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	if code == http.StatusUnprocessableEntity {
		if kind := models.KindFromName(apiErr.Kind); kind != nil {
			return &models.CalcError{Kind: kind, Field: apiErr.Field, Message: apiErr.Error}
		}
	}
	return fmt.Errorf("labcalc api error: code=%d, message=%s", code, apiErr.Error)
}
