package aws_ce

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

const (
	Name       = "aws"
	CostMetric = "UnblendedCost"
	MaxGroupBy = 2 // Cost Explorer accepts at most two GroupBy definitions
	maxPages   = 100
)

var DefaultDimensions = []string{string(types.DimensionService), string(types.DimensionRegion)}

// CostExplorerAPI is the subset of the Cost Explorer client used by the source
type CostExplorerAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

type Options struct {
	IncludeCredits bool // keep Credit and Refund record types
}

type source struct {
	client CostExplorerAPI
	opts   Options
}

func SourceFactory(ctx context.Context, profile string) (cost.Source, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	return NewSource(costexplorer.NewFromConfig(*cfg), Options{}), nil
}

func NewSource(client CostExplorerAPI, opts Options) cost.Source {
	return &source{client: client, opts: opts}
}

func (s *source) Name() string {
	return Name
}

func (s *source) Dimensions(q cost.Query) []string {
	dims := cost.ResolveDimensions(q.Dimensions, DefaultDimensions, MaxGroupBy)
	for i, d := range dims {
		dims[i] = strings.ToUpper(strings.TrimSpace(d))
	}
	return dims
}

func (s *source) Fetch(ctx context.Context, q cost.Query) ([]domain.RawRow, error) {
	input, err := s.buildInput(q)
	if err != nil {
		return nil, err
	}
	dims := s.Dimensions(q)

	var rows []domain.RawRow
	for page := 0; page < maxPages; page++ {
		result, err := s.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, domain.Unavailable(Name, fmt.Errorf("failed to get cost and usage: %w", err))
		}

		rows = append(rows, transformCostAndUsageResult(result, dims)...)

		if result.NextPageToken == nil || *result.NextPageToken == "" {
			return rows, nil
		}
		input.NextPageToken = result.NextPageToken
	}
	return nil, domain.Unavailable(Name, fmt.Errorf("cost and usage paging exceeded %d pages", maxPages))
}

func (s *source) buildInput(q cost.Query) (*costexplorer.GetCostAndUsageInput, error) {
	granularity, err := mapGranularity(q.Granularity)
	if err != nil {
		return nil, err
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(q.Start.Format(time.DateOnly)),
			End:   aws.String(q.End.Format(time.DateOnly)),
		},
		Granularity: granularity,
		Metrics:     []string{CostMetric},
	}

	for _, d := range s.Dimensions(q) {
		if !validDimension(d) {
			return nil, fmt.Errorf("%w: unsupported AWS dimension %q", domain.ErrInvalidRequest, d)
		}
		input.GroupBy = append(input.GroupBy, types.GroupDefinition{
			Type: types.GroupDefinitionTypeDimension,
			Key:  aws.String(d),
		})
	}

	var exprs []types.Expression
	for _, key := range cost.FilterKeys(q.Filter) {
		dim := strings.ToUpper(key)
		if !validDimension(dim) {
			return nil, fmt.Errorf("%w: unsupported AWS filter dimension %q", domain.ErrInvalidRequest, key)
		}
		exprs = append(exprs, types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.Dimension(dim),
				Values: q.Filter[key],
			},
		})
	}
	if !s.opts.IncludeCredits {
		exprs = append(exprs, types.Expression{
			Not: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:    types.DimensionRecordType,
					Values: []string{"Credit", "Refund"},
				},
			},
		})
	}
	switch len(exprs) {
	case 0:
	case 1:
		input.Filter = &exprs[0]
	default:
		input.Filter = &types.Expression{And: exprs}
	}
	return input, nil
}

func transformCostAndUsageResult(result *costexplorer.GetCostAndUsageOutput, dims []string) []domain.RawRow {
	var rows []domain.RawRow

	for _, resultByTime := range result.ResultsByTime {
		if resultByTime.TimePeriod == nil {
			continue
		}
		start := aws.ToString(resultByTime.TimePeriod.Start)
		end := aws.ToString(resultByTime.TimePeriod.End)

		if len(resultByTime.Groups) == 0 {
			// a period with no spend still counts as a period
			row := domain.RawRow{domain.FieldStart: start, domain.FieldEnd: end, domain.FieldAmount: "0"}
			if m, ok := resultByTime.Total[CostMetric]; ok {
				row[domain.FieldAmount] = aws.ToString(m.Amount)
				row[domain.FieldCurrency] = aws.ToString(m.Unit)
			}
			rows = append(rows, row)
			continue
		}

		for _, group := range resultByTime.Groups {
			metric, ok := group.Metrics[CostMetric]
			if !ok || metric.Amount == nil {
				continue
			}
			row := domain.RawRow{
				domain.FieldStart:    start,
				domain.FieldEnd:      end,
				domain.FieldAmount:   aws.ToString(metric.Amount),
				domain.FieldCurrency: aws.ToString(metric.Unit),
			}
			for i, key := range group.Keys {
				if i < len(dims) {
					row[dims[i]] = key
				}
			}
			rows = append(rows, row)
		}
	}

	return rows
}

func mapGranularity(g domain.Granularity) (types.Granularity, error) {
	switch g {
	case domain.GranularityDaily, "":
		return types.GranularityDaily, nil
	case domain.GranularityMonthly:
		return types.GranularityMonthly, nil
	case domain.GranularityHourly:
		return types.GranularityHourly, nil
	default:
		return "", fmt.Errorf("%w: AWS Cost Explorer does not support granularity %s", domain.ErrInvalidRequest, g)
	}
}

func validDimension(d string) bool {
	return slices.Contains(types.Dimension("").Values(), types.Dimension(d))
}
