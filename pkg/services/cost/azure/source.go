package azure

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

const (
	Name               = "azure"
	billingAccountRoot = "/providers/Microsoft.Billing/billingAccounts"
)

// Grouping columns accepted by the Cost Management query API per scope type
var (
	SubscriptionDimensions = []string{"ResourceType", "ResourceLocation", "ResourceGroupName"}

	BillingAccountDimensions = []string{
		"SubscriptionId", "BillingProfileId", "InvoiceSectionId", "Product", "Meter",
		"ServiceFamily", "ServiceName", "ResourceGroup", "ResourceId", "ResourceType",
		"ChargeType", "PublisherType", "BillingPeriod",
	}
)

// cost columns in lookup order, compared case-insensitively
var costColumns = []string{"pretaxcost", "actualcost", "costusd", "cost", "totalcost"}

// QueryAPI is the subset of armcostmanagement.QueryClient used by the source
type QueryAPI interface {
	Usage(
		ctx context.Context,
		scope string,
		parameters armcostmanagement.QueryDefinition,
		options *armcostmanagement.QueryClientUsageOptions,
	) (armcostmanagement.QueryClientUsageResponse, error)
}

type source struct {
	client QueryAPI
	cfg    *Config
}

func SourceFactory(ctx context.Context, profile string) (cost.Source, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	cred, err := NewCredential(cfg)
	if err != nil {
		return nil, err
	}
	client, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}
	return NewSource(client, cfg), nil
}

func NewSource(client QueryAPI, cfg *Config) cost.Source {
	return &source{client: client, cfg: cfg}
}

func (s *source) Name() string {
	return Name
}

func (s *source) scope(q cost.Query) string {
	if q.Scope != "" {
		return q.Scope
	}
	return s.cfg.DefaultScope()
}

func isBillingAccount(scope string) bool {
	return strings.HasPrefix(scope, billingAccountRoot)
}

// Metric returns the aggregated cost column for the scope
func Metric(scope string) string {
	if isBillingAccount(scope) {
		return "PreTaxCost"
	}
	return "ActualCost"
}

func (s *source) Dimensions(q cost.Query) []string {
	allowed, defaults := SubscriptionDimensions, SubscriptionDimensions[:2]
	if isBillingAccount(s.scope(q)) {
		allowed, defaults = BillingAccountDimensions, []string{"SubscriptionId"}
	}

	dims := cost.ResolveDimensions(q.Dimensions, defaults, 0)
	for i, d := range dims {
		if canonical, ok := lookupFold(allowed, d); ok {
			dims[i] = canonical
		}
	}
	return dims
}

func (s *source) Fetch(ctx context.Context, q cost.Query) ([]domain.RawRow, error) {
	scope := s.scope(q)
	def, err := s.buildQuery(q, scope)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Usage(ctx, scope, def, nil)
	if err != nil {
		return nil, domain.Unavailable(Name, fmt.Errorf("cost query failed for scope %s: %w", scope, err))
	}

	rows, err := parseResult(resp.QueryResult, s.Dimensions(q), q, s.cfg.Currency)
	if err != nil {
		return nil, domain.Unavailable(Name, fmt.Errorf("unexpected response for scope %s: %w", scope, err))
	}
	return rows, nil
}

func (s *source) buildQuery(q cost.Query, scope string) (armcostmanagement.QueryDefinition, error) {
	allowed := SubscriptionDimensions
	if isBillingAccount(scope) {
		allowed = BillingAccountDimensions
	}

	dataset := &armcostmanagement.QueryDataset{
		Aggregation: map[string]*armcostmanagement.QueryAggregation{
			Metric(scope): {
				Name:     to.Ptr(Metric(scope)),
				Function: to.Ptr(armcostmanagement.FunctionTypeSum),
			},
		},
	}

	switch q.Granularity {
	case domain.GranularityDaily, "":
		dataset.Granularity = to.Ptr(armcostmanagement.GranularityTypeDaily)
	case domain.GranularityMonthly:
		dataset.Granularity = to.Ptr(armcostmanagement.GranularityType("Monthly"))
	case domain.GranularityNone:
	default:
		return armcostmanagement.QueryDefinition{}, fmt.Errorf("%w: Azure cost queries do not support granularity %s", domain.ErrInvalidRequest, q.Granularity)
	}

	for _, d := range s.Dimensions(q) {
		if !slices.Contains(allowed, d) {
			return armcostmanagement.QueryDefinition{}, fmt.Errorf(
				"%w: invalid group by dimension %q for scope %s, allowed: %s",
				domain.ErrInvalidRequest, d, scope, strings.Join(allowed, ", "))
		}
		dataset.Grouping = append(dataset.Grouping, &armcostmanagement.QueryGrouping{
			Name: to.Ptr(d),
			Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
		})
	}

	var filters []*armcostmanagement.QueryFilter
	for _, key := range cost.FilterKeys(q.Filter) {
		filters = append(filters, &armcostmanagement.QueryFilter{
			Dimensions: &armcostmanagement.QueryComparisonExpression{
				Name:     to.Ptr(key),
				Operator: to.Ptr(armcostmanagement.QueryOperatorTypeIn),
				Values:   to.SliceOfPtrs(q.Filter[key]...),
			},
		})
	}
	switch len(filters) {
	case 0:
	case 1:
		dataset.Filter = filters[0]
	default:
		dataset.Filter = &armcostmanagement.QueryFilter{And: filters}
	}

	start, end := q.Start, q.End
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeUsage),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &start,
			To:   &end,
		},
		Dataset: dataset,
	}, nil
}

// buildColumnMap maps lower-cased column names to their indices
func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range columns {
		if col != nil && col.Name != nil {
			columnMap[strings.ToLower(*col.Name)] = i
		}
	}
	return columnMap
}

// parseResult maps result rows by column name. A result without a cost column is an error.
func parseResult(result armcostmanagement.QueryResult, dims []string, q cost.Query, currency string) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	if result.Properties == nil {
		return rows, nil
	}

	columnMap := buildColumnMap(result.Properties.Columns)
	costIdx := -1
	for _, name := range costColumns {
		if idx, ok := columnMap[name]; ok {
			costIdx = idx
			break
		}
	}
	if costIdx < 0 {
		return nil, fmt.Errorf("no cost column in response, expected one of %s", strings.Join(costColumns, ", "))
	}
	dateIdx, hasDate := columnMap["usagedate"]
	if !hasDate {
		dateIdx, hasDate = columnMap["billingmonth"]
	}
	currencyIdx, hasCurrency := columnMap["currency"]

	for _, values := range result.Properties.Rows {
		if len(values) <= costIdx {
			continue
		}
		row := domain.RawRow{
			domain.FieldAmount:   values[costIdx],
			domain.FieldCurrency: currency,
		}
		if hasDate && len(values) > dateIdx {
			row[domain.FieldStart] = values[dateIdx]
		} else {
			row[domain.FieldStart] = q.Start
			row[domain.FieldEnd] = q.End
		}
		if hasCurrency && len(values) > currencyIdx {
			if c, ok := values[currencyIdx].(string); ok && c != "" {
				row[domain.FieldCurrency] = c
			}
		}
		for _, d := range dims {
			if idx, ok := columnMap[strings.ToLower(d)]; ok && len(values) > idx {
				row[d] = values[idx]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func lookupFold(values []string, v string) (string, bool) {
	for _, candidate := range values {
		if strings.EqualFold(candidate, strings.TrimSpace(v)) {
			return candidate, true
		}
	}
	return "", false
}
