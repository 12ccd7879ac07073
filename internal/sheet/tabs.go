package sheet

import "strings"

// Tab identifies one logical table of pipeline records.
type Tab string

const (
	TabNicheInputs       Tab = "NicheInputs"
	TabKeywordResearch   Tab = "KeywordResearch"
	TabCompetitorGaps    Tab = "CompetitorGaps"
	TabContentQueue      Tab = "ContentQueue"
	TabContentCalendar   Tab = "ContentCalendar"
	TabBlogOutlines      Tab = "BlogOutlines"
	TabClusterMap        Tab = "ClusterMap"
	TabPublishQueue      Tab = "PublishQueue"
	TabImageLibrary      Tab = "ImageLibrary"
	TabPublishedArticles Tab = "PublishedArticles"
	TabSocialPosts       Tab = "SocialPosts"
	TabIncomingLeads     Tab = "IncomingLeads"
	TabMasterLeadList    Tab = "MasterLeadList"
	TabFollowUpTracker   Tab = "FollowUpTracker"
	TabEmailPerformance  Tab = "EmailPerformance"
	TabDailyMetrics      Tab = "DailyMetrics"
	TabKeywordRankings   Tab = "KeywordRankings"
	TabOptimizationLog   Tab = "OptimizationLog"
)

// Status represents a record's position in its tab's lifecycle.
type Status string

const (
	StatusNew         Status = "new"
	StatusResearched  Status = "researched"
	StatusScored      Status = "scored"
	StatusPlanned     Status = "planned"
	StatusWritten     Status = "written"
	StatusReady       Status = "ready"
	StatusIllustrated Status = "illustrated"
	StatusApproved    Status = "approved"
	StatusPublished   Status = "published"
	StatusScheduled   Status = "scheduled"
	StatusPosted      Status = "posted"
	StatusNurturing   Status = "nurturing"
	StatusConverted   Status = "converted"
	StatusPassive     Status = "passive"
	StatusDraft       Status = "draft"
	StatusSent        Status = "sent"

	// StatusRecorded is the single status of append-only tabs.
	StatusRecorded Status = "recorded"
)

var allTabs = []Tab{
	TabNicheInputs,
	TabKeywordResearch,
	TabCompetitorGaps,
	TabContentQueue,
	TabContentCalendar,
	TabBlogOutlines,
	TabClusterMap,
	TabPublishQueue,
	TabImageLibrary,
	TabPublishedArticles,
	TabSocialPosts,
	TabIncomingLeads,
	TabMasterLeadList,
	TabFollowUpTracker,
	TabEmailPerformance,
	TabDailyMetrics,
	TabKeywordRankings,
	TabOptimizationLog,
}

var initialStatuses = map[Tab]Status{
	TabNicheInputs:      StatusNew,
	TabContentQueue:     StatusNew,
	TabContentCalendar:  StatusPlanned,
	TabPublishQueue:     StatusReady,
	TabSocialPosts:      StatusScheduled,
	TabIncomingLeads:    StatusNew,
	TabMasterLeadList:   StatusNew,
	TabFollowUpTracker:  StatusScheduled,
	TabEmailPerformance: StatusDraft,
}

// transitions enumerates every legal forward step per tab. Statuses absent
// from a tab's map are terminal.
var transitions = map[Tab]map[Status][]Status{
	TabNicheInputs: {
		StatusNew: {StatusResearched},
	},
	TabContentQueue: {
		StatusNew: {StatusPlanned},
	},
	TabContentCalendar: {
		StatusPlanned: {StatusWritten},
	},
	TabPublishQueue: {
		StatusReady:       {StatusIllustrated},
		StatusIllustrated: {StatusApproved},
		StatusApproved:    {StatusPublished},
	},
	TabSocialPosts: {
		StatusScheduled: {StatusPosted},
	},
	TabIncomingLeads: {
		StatusNew: {StatusScored},
	},
	TabMasterLeadList: {
		StatusNew:       {StatusNurturing, StatusPassive},
		StatusNurturing: {StatusConverted, StatusPassive},
	},
	TabFollowUpTracker: {
		StatusScheduled: {StatusSent},
	},
	TabEmailPerformance: {
		StatusDraft:     {StatusScheduled},
		StatusScheduled: {StatusSent},
	},
}

// AllTabs returns the ordered list of known tabs.
func AllTabs() []Tab {
	cp := make([]Tab, len(allTabs))
	copy(cp, allTabs)
	return cp
}

// ParseTab converts a string into a known Tab. Matching is case-insensitive.
func ParseTab(value string) (Tab, bool) {
	trimmed := strings.TrimSpace(value)
	for _, tab := range allTabs {
		if strings.EqualFold(trimmed, string(tab)) {
			return tab, true
		}
	}
	return "", false
}

// InitialStatus returns the status assigned to freshly appended records.
func InitialStatus(tab Tab) Status {
	if status, ok := initialStatuses[tab]; ok {
		return status
	}
	return StatusRecorded
}

// AppendOnly reports whether a tab accumulates rows without status movement.
func AppendOnly(tab Tab) bool {
	_, ok := initialStatuses[tab]
	return !ok
}

// NextStatuses returns the legal forward steps from a status within a tab.
// Terminal statuses and append-only tabs return nil.
func NextStatuses(tab Tab, from Status) []Status {
	states, ok := transitions[tab]
	if !ok {
		return nil
	}
	next, ok := states[from]
	if !ok {
		return nil
	}
	cp := make([]Status, len(next))
	copy(cp, next)
	return cp
}

// CanAdvance reports whether moving from one status to another is a legal
// forward step for the tab.
func CanAdvance(tab Tab, from, to Status) bool {
	for _, candidate := range NextStatuses(tab, from) {
		if candidate == to {
			return true
		}
	}
	return false
}
