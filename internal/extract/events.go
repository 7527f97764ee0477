package extract

import (
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

var pushFields = []fieldRule{
	{path: []string{"after"}, name: "after", typ: measure.String},
	{path: []string{"before"}, name: "before", typ: measure.String},
	{path: []string{"ref"}, name: "ref", typ: measure.String},
	{path: []string{"base_ref"}, name: "base_ref", typ: measure.String},
	{path: []string{"compare"}, name: "compare", typ: measure.String},
	{path: []string{"created"}, name: "created", typ: measure.Bool},
	{path: []string{"deleted"}, name: "deleted", typ: measure.Bool},
	{path: []string{"forced"}, name: "forced", typ: measure.Bool},
	{path: []string{"pusher", "name"}, name: "pusher_name", typ: measure.String},
	{path: []string{"head_commit", "id"}, name: "head_commit_id", typ: measure.String},
	{path: []string{"head_commit", "message"}, name: "head_commit_message", typ: measure.String},
	{path: []string{"head_commit", "author", "name"}, name: "head_commit_author_name", typ: measure.String},
}

var pushArrays = []arrayRule{
	{path: []string{"commits"}, name: "commits", sub: []fieldRule{
		{path: []string{"id"}, name: "id", typ: measure.String},
		{path: []string{"message"}, name: "message", typ: measure.String},
	}},
}

func extractPush(tree payload.Tree) []measure.Value {
	values := applyRules(tree, "push_", pushFields)
	return append(values, applyArrayRules(tree, "push_", pushArrays)...)
}

// Fields under the pull_request object. Shared between the pull_request and
// pull_request_review events through the caller-supplied prefix so the same
// walk yields disjoint field names in each context.
var pullRequestFields = []fieldRule{
	{path: []string{"id"}, name: "id", typ: measure.Int64},
	{path: []string{"number"}, name: "number", typ: measure.Int64},
	{path: []string{"state"}, name: "state", typ: measure.String},
	{path: []string{"title"}, name: "title", typ: measure.String},
	{path: []string{"user", "login"}, name: "user_login", typ: measure.String},
	{path: []string{"user", "id"}, name: "user_id", typ: measure.Int64},
	{path: []string{"draft"}, name: "draft", typ: measure.Bool},
	{path: []string{"locked"}, name: "locked", typ: measure.Bool},
	// merged distinguishes false (emit) from null/undefined (omit): not-merged
	// and merge-status-unknown are different conditions.
	{path: []string{"merged"}, name: "merged", typ: measure.Bool},
	{path: []string{"commits"}, name: "commits", typ: measure.Int64},
	{path: []string{"additions"}, name: "additions", typ: measure.Int64},
	{path: []string{"deletions"}, name: "deletions", typ: measure.Int64},
	{path: []string{"changed_files"}, name: "changed_files", typ: measure.Int64},
	{path: []string{"comments"}, name: "comments", typ: measure.Int64},
	{path: []string{"review_comments"}, name: "review_comments", typ: measure.Int64},
	{path: []string{"head", "ref"}, name: "head_ref", typ: measure.String},
	{path: []string{"head", "sha"}, name: "head_sha", typ: measure.String},
	{path: []string{"base", "ref"}, name: "base_ref", typ: measure.String},
	{path: []string{"base", "sha"}, name: "base_sha", typ: measure.String},
	{path: []string{"merge_commit_sha"}, name: "merge_commit_sha", typ: measure.String},
	{path: []string{"created_at"}, name: "created_at", typ: measure.Timestamp},
	{path: []string{"updated_at"}, name: "updated_at", typ: measure.Timestamp},
	{path: []string{"closed_at"}, name: "closed_at", typ: measure.Timestamp},
	{path: []string{"merged_at"}, name: "merged_at", typ: measure.Timestamp},
}

var actorSubFields = []fieldRule{
	{path: []string{"login"}, name: "login", typ: measure.String},
	{path: []string{"id"}, name: "id", typ: measure.Int64},
}

var pullRequestArrays = []arrayRule{
	{path: []string{"assignees"}, name: "assignees", sub: actorSubFields},
	{path: []string{"requested_reviewers"}, name: "requested_reviewers", sub: actorSubFields},
	{path: []string{"labels"}, name: "labels", sub: []fieldRule{
		{path: []string{"name"}, name: "name", typ: measure.String},
	}},
}

// extractPullRequest walks payload.pull_request with the given field prefix.
func extractPullRequest(tree payload.Tree, prefix string) []measure.Value {
	pr, ok := tree.Object("pull_request")
	if !ok {
		return nil
	}
	values := applyRules(pr, prefix, pullRequestFields)
	return append(values, applyArrayRules(pr, prefix, pullRequestArrays)...)
}

var reviewFields = []fieldRule{
	{path: []string{"id"}, name: "id", typ: measure.Int64},
	{path: []string{"state"}, name: "state", typ: measure.String},
	{path: []string{"body"}, name: "body", typ: measure.String},
	{path: []string{"commit_id"}, name: "commit_id", typ: measure.String},
	{path: []string{"user", "login"}, name: "user_login", typ: measure.String},
	{path: []string{"user", "id"}, name: "user_id", typ: measure.Int64},
	{path: []string{"submitted_at"}, name: "submitted_at", typ: measure.Timestamp},
}

func extractPullRequestReview(tree payload.Tree) []measure.Value {
	values := extractPullRequest(tree, "pr_rv_")
	if review, ok := tree.Object("review"); ok {
		values = append(values, applyRules(review, "review_", reviewFields)...)
	}
	return values
}

var issueFields = []fieldRule{
	{path: []string{"id"}, name: "id", typ: measure.Int64},
	{path: []string{"number"}, name: "number", typ: measure.Int64},
	{path: []string{"state"}, name: "state", typ: measure.String},
	{path: []string{"state_reason"}, name: "state_reason", typ: measure.String},
	{path: []string{"title"}, name: "title", typ: measure.String},
	{path: []string{"user", "login"}, name: "user_login", typ: measure.String},
	{path: []string{"user", "id"}, name: "user_id", typ: measure.Int64},
	{path: []string{"author_association"}, name: "author_association", typ: measure.String},
	{path: []string{"locked"}, name: "locked", typ: measure.Bool},
	{path: []string{"comments"}, name: "comments", typ: measure.Int64},
	{path: []string{"assignee", "login"}, name: "assignee_login", typ: measure.String},
	{path: []string{"assignee", "id"}, name: "assignee_id", typ: measure.Int64},
	{path: []string{"created_at"}, name: "created_at", typ: measure.Timestamp},
	{path: []string{"updated_at"}, name: "updated_at", typ: measure.Timestamp},
	{path: []string{"closed_at"}, name: "closed_at", typ: measure.Timestamp},
}

var issueArrays = []arrayRule{
	{path: []string{"assignees"}, name: "assignees", sub: actorSubFields},
	{path: []string{"labels"}, name: "labels", sub: []fieldRule{
		{path: []string{"name"}, name: "name", typ: measure.String},
	}},
}

func extractIssues(tree payload.Tree) []measure.Value {
	issue, ok := tree.Object("issue")
	if !ok {
		return nil
	}
	values := applyRules(issue, "issue_", issueFields)
	return append(values, applyArrayRules(issue, "issue_", issueArrays)...)
}

var workflowRunFields = []fieldRule{
	{path: []string{"id"}, name: "id", typ: measure.Int64},
	{path: []string{"name"}, name: "name", typ: measure.String},
	{path: []string{"workflow_id"}, name: "workflow_id", typ: measure.Int64},
	{path: []string{"run_number"}, name: "run_number", typ: measure.Int64},
	{path: []string{"run_attempt"}, name: "run_attempt", typ: measure.Int64},
	{path: []string{"event"}, name: "event", typ: measure.String},
	{path: []string{"status"}, name: "status", typ: measure.String},
	{path: []string{"conclusion"}, name: "conclusion", typ: measure.String},
	{path: []string{"head_branch"}, name: "head_branch", typ: measure.String},
	{path: []string{"head_sha"}, name: "head_sha", typ: measure.String},
	{path: []string{"created_at"}, name: "created_at", typ: measure.Timestamp},
	{path: []string{"updated_at"}, name: "updated_at", typ: measure.Timestamp},
	{path: []string{"run_started_at"}, name: "run_started_at", typ: measure.Timestamp},
}

func extractWorkflowRun(tree payload.Tree) []measure.Value {
	run, ok := tree.Object("workflow_run")
	if !ok {
		return nil
	}
	return applyRules(run, "workflow_run_", workflowRunFields)
}

// extractCustomData passes client-supplied measure entries through verbatim.
// Each entry needs at least a name; unknown type strings degrade to STRING.
func extractCustomData(tree payload.Tree) []measure.Value {
	entries, ok := tree.Array("measures")
	if !ok {
		return nil
	}
	var values []measure.Value
	for _, raw := range entries {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		entry := payload.Tree(obj)
		name, ok := entry.String("name")
		if !ok || name == "" {
			continue
		}
		typeName, _ := entry.String("type")
		val, ok := entry.Get("value")
		if !ok {
			continue
		}
		values = append(values, measure.Value{
			Name:  name,
			Type:  measure.ParseType(typeName),
			Value: payload.Stringify(val),
		})
	}
	return values
}
