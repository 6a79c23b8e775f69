package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizdesk/internal/domain/account"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dynamoUserIDIndex = "user_id-index"
	// quoteGuardPrefix keys the items that reserve a quote_id inside the
	// payments table. Guards carry no user_id so they stay out of the index.
	quoteGuardPrefix = "quote-link#"
)

type dynamoAPI interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore persists one DynamoDB table per entity.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-index (PK: user_id)
//
// DynamoDB has no foreign keys. Writes that set a reference run in a
// transaction with a condition check on the referenced item, and a guard
// item makes payments.quote_id unique. Payment lookups by quote_id read the
// guard with strong consistency; every other filter and the client
// reference checks on delete go through the index, which is eventually
// consistent.
type DynamoStore struct {
	ddb    dynamoAPI
	names  map[interfaces.Table]string
	logger *zap.Logger
	now    func() time.Time
}

var _ interfaces.IEntityStore = (*DynamoStore)(nil)

// NewDynamoStore maps each logical table to its physical name; missing
// entries use the logical name.
func NewDynamoStore(ddb dynamoAPI, tableNames map[interfaces.Table]string, logger *zap.Logger) *DynamoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	names := make(map[interfaces.Table]string, len(tableOrder))
	for _, t := range tableOrder {
		names[t] = string(t)
		if n := strings.TrimSpace(tableNames[t]); n != "" {
			names[t] = n
		}
	}
	return &DynamoStore{
		ddb:    ddb,
		names:  names,
		logger: logger.Named("dynamodb_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DynamoStore) List(ctx context.Context, table interfaces.Table, filter interfaces.Filter) ([]interfaces.Row, error) {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	f, err := sc.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, sc, accountID, f)
}

// find routes payment lookups by quote_id through the guard item. The index
// can still show a link that was just removed, or miss one just added.
func (s *DynamoStore) find(ctx context.Context, sc *tableSchema, accountID string, filter interfaces.Filter) ([]interfaces.Row, error) {
	if sc.name == interfaces.TablePayments {
		if quoteID, ok := filter[interfaces.ColQuoteID].(string); ok {
			return s.findByQuote(ctx, sc, accountID, quoteID, filter)
		}
	}
	return s.query(ctx, sc, accountID, filter)
}

func (s *DynamoStore) findByQuote(ctx context.Context, sc *tableSchema, accountID, quoteID string, filter interfaces.Filter) ([]interfaces.Row, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.names[sc.name]),
		Key:            dynamoKey(quoteGuardPrefix + quoteID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.mapError("get", sc.name, err)
	}
	paymentID, ok := out.Item["payment_id"].(*types.AttributeValueMemberS)
	if !ok {
		return []interfaces.Row{}, nil
	}
	row, err := s.get(ctx, sc, paymentID.Value)
	if err != nil {
		return nil, err
	}
	if row == nil || row[interfaces.ColUserID] != accountID || !matches(row, filter) {
		return []interfaces.Row{}, nil
	}
	return []interfaces.Row{row}, nil
}

func (s *DynamoStore) query(ctx context.Context, sc *tableSchema, accountID string, filter interfaces.Filter) ([]interfaces.Row, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.names[sc.name]),
		IndexName:              aws.String(dynamoUserIDIndex),
		KeyConditionExpression: aws.String("#uid = :uid"),
		ExpressionAttributeNames: map[string]string{
			"#uid": interfaces.ColUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: accountID},
		},
	}
	if expr := dynamoFilterExpression(sc, filter, in.ExpressionAttributeNames, in.ExpressionAttributeValues); expr != "" {
		in.FilterExpression = aws.String(expr)
	}

	out := make([]interfaces.Row, 0)
	p := dynamodb.NewQueryPaginator(s.ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, s.mapError("list", sc.name, err)
		}
		for _, item := range page.Items {
			row, err := fromDynamoItem(sc, item)
			if err != nil {
				return nil, fmt.Errorf("%w: decode %s: %w", entities.ErrStoreUnavailable, sc.name, err)
			}
			out = append(out, row)
		}
	}
	sortRows(out)
	return out, nil
}

func (s *DynamoStore) Insert(ctx context.Context, table interfaces.Table, row interfaces.Row) (interfaces.Row, error) {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	r, err := sc.normalizeRow(row, false)
	if err != nil {
		return nil, err
	}
	r, err = sc.complete(r, uuid.NewString(), accountID, s.now())
	if err != nil {
		return nil, err
	}

	item, err := toDynamoItem(sc, r)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", entities.ErrInvalidValue, table, err)
	}
	id := r[interfaces.ColID].(string)
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                aws.String(s.names[table]),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": interfaces.ColID},
		},
	}}
	items = append(items, s.refChecks(sc, r, accountID)...)
	if table == interfaces.TablePayments {
		if q, ok := r[interfaces.ColQuoteID].(string); ok {
			items = append(items, s.putGuard(q, id))
		}
	}

	if _, err := s.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return nil, s.mapTxError("insert", table, id, err, false)
	}
	return copyRow(r), nil
}

func (s *DynamoStore) Update(ctx context.Context, table interfaces.Table, id string, patch interfaces.Row) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	p, err := sc.normalizeRow(patch, true)
	if err != nil {
		return err
	}
	if _, ok := p[interfaces.ColUpdatedAt]; !ok {
		p[interfaces.ColUpdatedAt] = s.now()
	}

	update, err := dynamoUpdate(sc, p)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", entities.ErrInvalidValue, table, err)
	}
	update.TableName = aws.String(s.names[table])
	update.Key = dynamoKey(id)
	update.ConditionExpression = aws.String("attribute_exists(#id) AND #uid = :uid")
	update.ExpressionAttributeNames["#id"] = interfaces.ColID
	update.ExpressionAttributeNames["#uid"] = interfaces.ColUserID
	update.ExpressionAttributeValues[":uid"] = &types.AttributeValueMemberS{Value: accountID}

	items := []types.TransactWriteItem{{Update: update}}
	items = append(items, s.refChecks(sc, p, accountID)...)

	if newQuote, touched := p[interfaces.ColQuoteID]; touched && table == interfaces.TablePayments {
		current, err := s.get(ctx, sc, id)
		if err != nil {
			return err
		}
		if current == nil || current[interfaces.ColUserID] != accountID {
			return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
		}
		oldQuote := current[interfaces.ColQuoteID]
		if !valuesEqual(oldQuote, newQuote) {
			if q, ok := oldQuote.(string); ok {
				items = append(items, s.deleteGuard(q))
			}
			if q, ok := newQuote.(string); ok {
				items = append(items, s.putGuard(q, id))
			}
		}
	}

	if _, err := s.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return s.mapTxError("update", table, id, err, true)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, table interfaces.Table, id string) error {
	accountID, err := account.IDFromContext(ctx)
	if err != nil {
		return err
	}
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}

	for _, ref := range referencing(table) {
		rows, err := s.find(ctx, schemas[ref.from], accountID, interfaces.Filter{ref.column: id})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			return fmt.Errorf("%w: %s %s is still referenced by %s.%s", entities.ErrReferentialConflict, table, id, ref.from, ref.column)
		}
	}

	items := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName:                 aws.String(s.names[table]),
			Key:                       dynamoKey(id),
			ConditionExpression:       aws.String("attribute_exists(#id) AND #uid = :uid"),
			ExpressionAttributeNames:  map[string]string{"#id": interfaces.ColID, "#uid": interfaces.ColUserID},
			ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: accountID}},
		},
	}}
	if table == interfaces.TablePayments {
		current, err := s.get(ctx, sc, id)
		if err != nil {
			return err
		}
		if current != nil {
			if q, ok := current[interfaces.ColQuoteID].(string); ok {
				items = append(items, s.deleteGuard(q))
			}
		}
	}

	if _, err := s.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return s.mapTxError("delete", table, id, err, true)
	}
	return nil
}

// get reads one item with strong consistency; nil means absent.
func (s *DynamoStore) get(ctx context.Context, sc *tableSchema, id string) (interfaces.Row, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.names[sc.name]),
		Key:            dynamoKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.mapError("get", sc.name, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return fromDynamoItem(sc, out.Item)
}

func (s *DynamoStore) refChecks(sc *tableSchema, row interfaces.Row, accountID string) []types.TransactWriteItem {
	var out []types.TransactWriteItem
	for _, ref := range sc.refs {
		target, ok := row[ref.column].(string)
		if !ok {
			continue
		}
		out = append(out, types.TransactWriteItem{
			ConditionCheck: &types.ConditionCheck{
				TableName:                 aws.String(s.names[ref.table]),
				Key:                       dynamoKey(target),
				ConditionExpression:       aws.String("attribute_exists(#id) AND #uid = :uid"),
				ExpressionAttributeNames:  map[string]string{"#id": interfaces.ColID, "#uid": interfaces.ColUserID},
				ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: accountID}},
			},
		})
	}
	return out
}

func (s *DynamoStore) putGuard(quoteID, paymentID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(s.names[interfaces.TablePayments]),
			Item: map[string]types.AttributeValue{
				interfaces.ColID: &types.AttributeValueMemberS{Value: quoteGuardPrefix + quoteID},
				"payment_id":     &types.AttributeValueMemberS{Value: paymentID},
			},
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": interfaces.ColID},
		},
	}
}

func (s *DynamoStore) deleteGuard(quoteID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(s.names[interfaces.TablePayments]),
			Key:       dynamoKey(quoteGuardPrefix + quoteID),
		},
	}
}

// mapTxError turns a cancelled transaction into an error kind. The first
// transaction item is always the target row; a failed condition there means
// not found for updates and deletes, and a duplicate id for inserts.
func (s *DynamoStore) mapTxError(op string, table interfaces.Table, id string, err error, targetMustExist bool) error {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for i, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			if i == 0 && targetMustExist {
				return fmt.Errorf("%w: %s %s", entities.ErrNotFound, table, id)
			}
			return fmt.Errorf("%w: %s %s %s", entities.ErrReferentialConflict, op, table, id)
		}
	}
	return s.mapError(op, table, err)
}

func (s *DynamoStore) mapError(op string, table interfaces.Table, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%w: %s %s", entities.ErrReferentialConflict, op, table)
	}
	s.logger.Error("store call failed", zap.String("op", op), zap.String("table", string(table)), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", entities.ErrStoreUnavailable, op, table, err)
}

func dynamoKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		interfaces.ColID: &types.AttributeValueMemberS{Value: id},
	}
}

// toDynamoItem omits NULL columns, stores money as a number and times as
// RFC3339 text.
func toDynamoItem(sc *tableSchema, row interfaces.Row) (map[string]types.AttributeValue, error) {
	plain := make(map[string]any, len(row))
	for _, c := range sc.columns {
		v, ok := row[c.name]
		if !ok || v == nil {
			continue
		}
		plain[c.name] = dynamoPlain(v)
	}
	return attributevalue.MarshalMap(plain)
}

func dynamoPlain(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return attributevalue.Number(t.String())
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

func fromDynamoItem(sc *tableSchema, item map[string]types.AttributeValue) (interfaces.Row, error) {
	var plain map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &plain, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	row := make(interfaces.Row, len(sc.columns))
	for _, c := range sc.columns {
		v, ok := plain[c.name]
		if !ok || v == nil {
			row[c.name] = nil
			continue
		}
		switch c.kind {
		case kindMoney:
			var raw string
			switch n := v.(type) {
			case attributevalue.Number:
				raw = n.String()
			case string:
				raw = n
			default:
				return nil, fmt.Errorf("column %s: unexpected %T", c.name, v)
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[c.name] = d
		case kindTime, kindNullableTime:
			raw, _ := v.(string)
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[c.name] = t.UTC()
		default:
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("column %s: unexpected %T", c.name, v)
			}
			row[c.name] = str
		}
	}
	return row, nil
}

func dynamoFilterExpression(sc *tableSchema, filter interfaces.Filter, names map[string]string, values map[string]types.AttributeValue) string {
	parts := make([]string, 0, len(filter))
	for i, k := range sortedKeys(filter) {
		name := fmt.Sprintf("#f%d", i)
		names[name] = k
		v := filter[k]
		if v == nil {
			parts = append(parts, fmt.Sprintf("attribute_not_exists(%s)", name))
			continue
		}
		placeholder := fmt.Sprintf(":f%d", i)
		values[placeholder] = dynamoAttr(v)
		parts = append(parts, fmt.Sprintf("%s = %s", name, placeholder))
	}
	return strings.Join(parts, " AND ")
}

func dynamoAttr(v any) types.AttributeValue {
	switch t := v.(type) {
	case decimal.Decimal:
		return &types.AttributeValueMemberN{Value: t.String()}
	case time.Time:
		return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}
	case string:
		return &types.AttributeValueMemberS{Value: t}
	}
	return &types.AttributeValueMemberNULL{Value: true}
}

// dynamoUpdate builds SET for present values and REMOVE for NULLs.
func dynamoUpdate(sc *tableSchema, patch interfaces.Row) (*types.Update, error) {
	u := &types.Update{
		ExpressionAttributeNames:  map[string]string{},
		ExpressionAttributeValues: map[string]types.AttributeValue{},
	}
	var sets, removes []string
	for i, k := range sortedKeys(patch) {
		if _, ok := sc.kinds[k]; !ok {
			return nil, fmt.Errorf("unknown column %s", k)
		}
		name := fmt.Sprintf("#p%d", i)
		u.ExpressionAttributeNames[name] = k
		if patch[k] == nil {
			removes = append(removes, name)
			continue
		}
		placeholder := fmt.Sprintf(":p%d", i)
		u.ExpressionAttributeValues[placeholder] = dynamoAttr(patch[k])
		sets = append(sets, fmt.Sprintf("%s = %s", name, placeholder))
	}
	var expr []string
	if len(sets) > 0 {
		expr = append(expr, "SET "+strings.Join(sets, ", "))
	}
	if len(removes) > 0 {
		expr = append(expr, "REMOVE "+strings.Join(removes, ", "))
	}
	u.UpdateExpression = aws.String(strings.Join(expr, " "))
	return u, nil
}
