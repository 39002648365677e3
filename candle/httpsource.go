package candle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// HTTPSource fetches historical daily candles from an upstream HTTP API
// that returns comma-separated OHLCV rows in a (possibly GBK-encoded)
// JSON payload. The URL template is configurable so this can point at any
// upstream speaking the same wire shape.
type HTTPSource struct {
	client      *http.Client
	urlTemplate string // formatted with instrument, limit
	gbkEncoded  bool
}

// NewHTTPSource builds an HTTPSource. urlTemplate must contain exactly two
// %s/%d verbs consumed as fmt.Sprintf(urlTemplate, instrument, limit).
func NewHTTPSource(urlTemplate string, gbkEncoded bool) *HTTPSource {
	return &HTTPSource{
		client:      &http.Client{Timeout: 15 * time.Second},
		urlTemplate: urlTemplate,
		gbkEncoded:  gbkEncoded,
	}
}

func (s *HTTPSource) QueryCandles(ctx context.Context, instrument InstrumentKey, _ TimeframeKey, startInclusive, endInclusive time.Time) ([]Candle, error) {
	limit := int(endInclusive.Sub(startInclusive).Hours()/24) + 1
	if limit < 1 {
		limit = 1
	}

	url := fmt.Sprintf(s.urlTemplate, string(instrument), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body []byte
	if s.gbkEncoded {
		reader := transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
		body, err = io.ReadAll(reader)
	} else {
		body, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	candles, err := parseKLines(body)
	if err != nil {
		return nil, err
	}

	var out []Candle
	for _, c := range candles {
		if c.Timestamp.Before(startInclusive) || c.Timestamp.After(endInclusive) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type klineEnvelope struct {
	Data struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// parseKLines decodes "date,open,close,high,low,volume,..." rows into
// Candles in the order the rows appear; they are not re-sorted. Malformed
// rows are skipped.
func parseKLines(data []byte) ([]Candle, error) {
	var env klineEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode kline envelope: %w", err)
	}

	out := make([]Candle, 0, len(env.Data.Klines))
	for _, line := range env.Data.Klines {
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", parts[0], time.UTC)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		closeP, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseInt(parts[5], 10, 64)

		out = append(out, Candle{
			Timestamp: t,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closeP,
			Volume:    volume,
		})
	}
	return out, nil
}
