package vitibrasil

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"vitibrasil-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/vitibrasil")

const DefaultBaseUrl = "http://vitibrasil.cnpuv.embrapa.br/index.php"

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// hard per-request cap, defaults to 30s. the orchestrator applies its
	// own per-attempt deadline through the context.
	Timeout time.Duration
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "scrapers/vitibrasil/http")

	return &Client{http: client}
}

// PageRequest identifies one statistics page: the site option for the
// category ("opt_02".."opt_06"), an optional sub-option button and the year.
type PageRequest struct {
	Option         string
	SubOption      string
	SubOptionLabel string
	Year           int
}

// FetchPage downloads and parses one page into raw rows, stamping each row
// with the requested year and sub-option label.
func (c *Client) FetchPage(ctx context.Context, req PageRequest) ([]RawRow, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("option", req.Option),
		attribute.String("subOption", req.SubOption),
		attribute.Int("year", req.Year),
	)

	r := c.http.R().
		SetContext(ctx).
		SetQueryParam("opcao", req.Option).
		SetQueryParam("ano", strconv.Itoa(req.Year))
	if req.SubOption != "" {
		r.SetQueryParam("subopcao", req.SubOption)
	}

	res, err := r.Get("")
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %s", ErrTransient, err)
	}
	if res.StatusCode() >= 500 {
		span.SetStatus(codes.Error, "upstream 5xx")
		return nil, fmt.Errorf("%w: upstream status %d", ErrTransient, res.StatusCode())
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "upstream 4xx")
		return nil, fmt.Errorf("upstream status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("%w: %s", ErrMalformedPage, err)
	}

	rows, err := ParseDataTable(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse data table")
		return nil, err
	}

	year := strconv.Itoa(req.Year)
	for _, row := range rows {
		row[KeyYear] = year
		if req.SubOptionLabel != "" {
			row[KeySubOption] = req.SubOptionLabel
		}
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}
