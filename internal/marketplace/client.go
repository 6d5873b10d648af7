package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mturk"
	"github.com/aws/aws-sdk-go-v2/service/mturk/types"

	"abxsurvey/internal/logging"
)

// API abstracts the MTurk operations used by [Client].
// The [mturk.Client] type satisfies this interface.
type API interface {
	GetAccountBalance(ctx context.Context, params *mturk.GetAccountBalanceInput, optFns ...func(*mturk.Options)) (*mturk.GetAccountBalanceOutput, error)
	CreateHIT(ctx context.Context, params *mturk.CreateHITInput, optFns ...func(*mturk.Options)) (*mturk.CreateHITOutput, error)
	ListHITs(ctx context.Context, params *mturk.ListHITsInput, optFns ...func(*mturk.Options)) (*mturk.ListHITsOutput, error)
	ListReviewableHITs(ctx context.Context, params *mturk.ListReviewableHITsInput, optFns ...func(*mturk.Options)) (*mturk.ListReviewableHITsOutput, error)
	ListQualificationTypes(ctx context.Context, params *mturk.ListQualificationTypesInput, optFns ...func(*mturk.Options)) (*mturk.ListQualificationTypesOutput, error)
	ListAssignmentsForHIT(ctx context.Context, params *mturk.ListAssignmentsForHITInput, optFns ...func(*mturk.Options)) (*mturk.ListAssignmentsForHITOutput, error)
}

// ErrEmptyResponse is returned when MTurk answers without the expected payload.
var ErrEmptyResponse = errors.New("marketplace: empty response")

const pageSize = 100

// HITRequest carries the parameters of one HIT.
type HITRequest struct {
	Title         string
	Description   string
	Keywords      string
	Reward        string
	MaxAssignment int
	Lifetime      time.Duration
	Duration      time.Duration
	ApprovalDelay time.Duration
	Question      string
	// Annotation is stored with the HIT and visible only to the requester.
	Annotation string
}

// HIT is the subset of MTurk HIT fields the tool reports.
type HIT struct {
	ID        string
	GroupID   string
	Title     string
	Status    string
	Available int
	Pending   int
	Completed int
	Expires   time.Time
}

// Qualification is an owned qualification type.
type Qualification struct {
	ID     string
	Name   string
	Status string
}

// Assignment is one worker submission.
type Assignment struct {
	ID               string
	WorkerID         string
	Status           string
	SubmitTime       time.Time
	AutoApprovalTime time.Time
	Answers          []Answer
}

// Client issues MTurk requests.
type Client struct {
	api     API
	sandbox bool
	logger  *slog.Logger
}

// New wraps api. sandbox selects preview links for the worker sandbox.
func New(api API, sandbox bool, logger *slog.Logger) *Client {
	return &Client{
		api:     api,
		sandbox: sandbox,
		logger:  logging.NewComponentLogger(logger, "marketplace"),
	}
}

// NewAPI builds an SDK client. endpoint may be empty for production.
func NewAPI(region, endpoint string, creds aws.CredentialsProvider) *mturk.Client {
	return mturk.New(mturk.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *mturk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// Sandbox reports whether the client targets the requester sandbox.
func (c *Client) Sandbox() bool { return c.sandbox }

// Balance returns the available prepaid balance in dollars as MTurk formats it.
func (c *Client) Balance(ctx context.Context) (string, error) {
	out, err := c.api.GetAccountBalance(ctx, &mturk.GetAccountBalanceInput{})
	if err != nil {
		return "", fmt.Errorf("marketplace: get balance: %w", err)
	}
	if out == nil || out.AvailableBalance == nil {
		return "", fmt.Errorf("marketplace: get balance: %w", ErrEmptyResponse)
	}
	return *out.AvailableBalance, nil
}

// CreateHIT submits one HIT and returns its identifiers.
func (c *Client) CreateHIT(ctx context.Context, req HITRequest) (HIT, error) {
	input := &mturk.CreateHITInput{
		Title:                       aws.String(req.Title),
		Description:                 aws.String(req.Description),
		Reward:                      aws.String(req.Reward),
		MaxAssignments:              aws.Int32(int32(req.MaxAssignment)),
		LifetimeInSeconds:           aws.Int64(int64(req.Lifetime / time.Second)),
		AssignmentDurationInSeconds: aws.Int64(int64(req.Duration / time.Second)),
		AutoApprovalDelayInSeconds:  aws.Int64(int64(req.ApprovalDelay / time.Second)),
		Question:                    aws.String(req.Question),
	}
	if req.Keywords != "" {
		input.Keywords = aws.String(req.Keywords)
	}
	if req.Annotation != "" {
		input.RequesterAnnotation = aws.String(req.Annotation)
	}

	out, err := c.api.CreateHIT(ctx, input)
	if err != nil {
		return HIT{}, fmt.Errorf("marketplace: create hit %q: %w", req.Title, err)
	}
	if out == nil || out.HIT == nil {
		return HIT{}, fmt.Errorf("marketplace: create hit %q: %w", req.Title, ErrEmptyResponse)
	}
	hit := fromSDKHIT(*out.HIT)
	c.logger.Info("hit created",
		logging.String(logging.FieldHITID, hit.ID),
		logging.String("group_id", hit.GroupID),
		logging.String("title", req.Title),
	)
	return hit, nil
}

// ListHITs returns every HIT owned by the requester.
func (c *Client) ListHITs(ctx context.Context) ([]HIT, error) {
	var hits []HIT
	var token *string
	for {
		out, err := c.api.ListHITs(ctx, &mturk.ListHITsInput{MaxResults: aws.Int32(pageSize), NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("marketplace: list hits: %w", err)
		}
		for _, h := range out.HITs {
			hits = append(hits, fromSDKHIT(h))
		}
		if out.NextToken == nil || len(out.HITs) == 0 {
			return hits, nil
		}
		token = out.NextToken
	}
}

// ListReviewableHITs returns HITs with submissions awaiting review.
func (c *Client) ListReviewableHITs(ctx context.Context) ([]HIT, error) {
	var hits []HIT
	var token *string
	for {
		out, err := c.api.ListReviewableHITs(ctx, &mturk.ListReviewableHITsInput{MaxResults: aws.Int32(pageSize), NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("marketplace: list reviewable hits: %w", err)
		}
		for _, h := range out.HITs {
			hits = append(hits, fromSDKHIT(h))
		}
		if out.NextToken == nil || len(out.HITs) == 0 {
			return hits, nil
		}
		token = out.NextToken
	}
}

// ListQualifications returns qualification types owned by the caller.
func (c *Client) ListQualifications(ctx context.Context) ([]Qualification, error) {
	var quals []Qualification
	var token *string
	for {
		out, err := c.api.ListQualificationTypes(ctx, &mturk.ListQualificationTypesInput{
			MustBeRequestable:   aws.Bool(false),
			MustBeOwnedByCaller: aws.Bool(true),
			MaxResults:          aws.Int32(pageSize),
			NextToken:           token,
		})
		if err != nil {
			return nil, fmt.Errorf("marketplace: list qualification types: %w", err)
		}
		for _, q := range out.QualificationTypes {
			quals = append(quals, Qualification{
				ID:     aws.ToString(q.QualificationTypeId),
				Name:   aws.ToString(q.Name),
				Status: string(q.QualificationTypeStatus),
			})
		}
		if out.NextToken == nil || len(out.QualificationTypes) == 0 {
			return quals, nil
		}
		token = out.NextToken
	}
}

// SubmittedAssignments returns the submitted, not yet reviewed assignments of
// hitID with their answers parsed.
func (c *Client) SubmittedAssignments(ctx context.Context, hitID string) ([]Assignment, error) {
	var assignments []Assignment
	var token *string
	for {
		out, err := c.api.ListAssignmentsForHIT(ctx, &mturk.ListAssignmentsForHITInput{
			HITId:              aws.String(hitID),
			AssignmentStatuses: []types.AssignmentStatus{types.AssignmentStatusSubmitted},
			MaxResults:         aws.Int32(pageSize),
			NextToken:          token,
		})
		if err != nil {
			return nil, fmt.Errorf("marketplace: list assignments for %s: %w", hitID, err)
		}
		for _, a := range out.Assignments {
			answers, err := ParseAnswers(aws.ToString(a.Answer))
			if err != nil {
				c.logger.Warn("unparseable assignment answer",
					logging.String(logging.FieldHITID, hitID),
					logging.String("assignment_id", aws.ToString(a.AssignmentId)),
					logging.Error(err),
				)
			}
			assignments = append(assignments, Assignment{
				ID:               aws.ToString(a.AssignmentId),
				WorkerID:         aws.ToString(a.WorkerId),
				Status:           string(a.AssignmentStatus),
				SubmitTime:       aws.ToTime(a.SubmitTime),
				AutoApprovalTime: aws.ToTime(a.AutoApprovalTime),
				Answers:          answers,
			})
		}
		if out.NextToken == nil || len(out.Assignments) == 0 {
			return assignments, nil
		}
		token = out.NextToken
	}
}

func fromSDKHIT(h types.HIT) HIT {
	return HIT{
		ID:        aws.ToString(h.HITId),
		GroupID:   aws.ToString(h.HITGroupId),
		Title:     aws.ToString(h.Title),
		Status:    string(h.HITStatus),
		Available: int(aws.ToInt32(h.NumberOfAssignmentsAvailable)),
		Pending:   int(aws.ToInt32(h.NumberOfAssignmentsPending)),
		Completed: int(aws.ToInt32(h.NumberOfAssignmentsCompleted)),
		Expires:   aws.ToTime(h.Expiration),
	}
}

// Surcharge is the marketplace fee multiplier applied to rewards.
const Surcharge = 1.4

// Cost estimates the total charge for forms HITs with coverage assignments each.
func Cost(coverage, forms int, reward float64) float64 {
	return Surcharge * float64(coverage) * float64(forms) * reward
}

// FormatCost renders a dollar amount with cents.
func FormatCost(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', 2, 64)
}

// PreviewURL returns the worker-facing preview link for a HIT group.
func PreviewURL(sandbox bool, groupID string) string {
	host := "worker.mturk.com"
	if sandbox {
		host = "workersandbox.mturk.com"
	}
	return "https://" + host + "/mturk/preview?groupId=" + groupID
}

// PreviewURL returns the preview link for groupID on the client's marketplace.
func (c *Client) PreviewURL(groupID string) string {
	return PreviewURL(c.sandbox, groupID)
}
