package constants

import (
	"regexp"
	"time"
)

// Namespaces
const (
	AtomNS   = "http://www.w3.org/2005/Atom"
	AppNS    = "http://www.w3.org/2007/app"
	CmisraNS = "http://docs.oasis-open.org/ns/cmis/restatom/200908/"
	CmisNS   = "http://docs.oasis-open.org/ns/cmis/core/200908/"
)

// Content types
const (
	AtomXMLType      = "application/atom+xml"
	AtomXMLEntryType = "application/atom+xml;type=entry"
	AtomXMLFeedType  = "application/atom+xml;type=feed"
	CmisTreeType     = "application/cmistree+xml"
	CmisQueryType    = "application/cmisquery+xml"

	// DefaultContentMimeType is used for document content whose type
	// could not be determined from its name.
	DefaultContentMimeType = "application/binary"
)

// Content type patterns. Servers append parameters in differing order,
// so links are matched by pattern rather than by equality.
var (
	AtomXMLEntryTypeP = regexp.MustCompile(`^application/atom\+xml.*type.*entry`)
	AtomXMLFeedTypeP  = regexp.MustCompile(`^application/atom\+xml.*type.*feed`)
	CmisTreeTypeP     = regexp.MustCompile(`^application/cmistree\+xml`)
)

// Link relations
const (
	DownRel            = "down"
	FirstRel           = "first"
	LastRel            = "last"
	NextRel            = "next"
	PrevRel            = "prev"
	SelfRel            = "self"
	UpRel              = "up"
	VersionHistoryRel  = "version-history"
	TypeDescendantsRel = "http://docs.oasis-open.org/ns/cmis/link/200908/typedescendants"
	FolderTreeRel      = "http://docs.oasis-open.org/ns/cmis/link/200908/foldertree"
	RelationshipsRel   = "http://docs.oasis-open.org/ns/cmis/link/200908/relationships"
)

// Collection types
const (
	QueryColl      = "query"
	TypesColl      = "types"
	CheckedOutColl = "checkedout"
	UnfiledColl    = "unfiled"
	RootColl       = "root"
)

// URI template types
const (
	ObjectByIDTemplate   = "objectbyid"
	ObjectByPathTemplate = "objectbypath"
	TypeByIDTemplate     = "typebyid"
	QueryTemplate        = "query"
)

// Base type ids
const (
	BaseTypeDocument     = "cmis:document"
	BaseTypeFolder       = "cmis:folder"
	BaseTypeRelationship = "cmis:relationship"
	BaseTypePolicy       = "cmis:policy"
)

// Well-known property ids
const (
	PropObjectID                  = "cmis:objectId"
	PropObjectTypeID              = "cmis:objectTypeId"
	PropBaseTypeID                = "cmis:baseTypeId"
	PropName                      = "cmis:name"
	PropSourceID                  = "cmis:sourceId"
	PropTargetID                  = "cmis:targetId"
	PropPolicyText                = "cmis:policyText"
	PropVersionSeriesCheckedOutID = "cmis:versionSeriesCheckedOutId"
	PropVersionSeriesCheckedOutBy = "cmis:versionSeriesCheckedOutBy"
	PropIsVersionSeriesCheckedOut = "cmis:isVersionSeriesCheckedOut"
	PropContentStreamMimeType     = "cmis:contentStreamMimeType"
	PropContentStreamFileName     = "cmis:contentStreamFileName"
	PropChangeToken               = "cmis:changeToken"
)

// Option names understood by the objectbyid template and friends
const (
	OptFilter                     = "filter"
	OptIncludeAllowableActions    = "includeAllowableActions"
	OptIncludePolicyIDs           = "includePolicyIds"
	OptIncludeRelationships       = "includeRelationships"
	OptIncludeACL                 = "includeACL"
	OptRenditionFilter            = "renditionFilter"
	OptReturnVersion              = "returnVersion"
	OptDepth                      = "depth"
	OptCheckin                    = "checkin"
	OptCheckinComment             = "checkinComment"
	OptMajor                      = "major"
	OptIncludePropertyDefinitions = "includePropertyDefinitions"
)

// Repository capability names, as reported with the "capability" prefix removed
const (
	CapabilityUnfiling       = "Unfiling"
	CapabilityMultifiling    = "Multifiling"
	CapabilityGetDescendants = "GetDescendants"
	CapabilityGetFolderTree  = "GetFolderTree"
	CapabilityChanges        = "Changes"
	CapabilityRenditions     = "Renditions"
	CapabilityACL            = "ACL"
)

const (
	// DefaultHTTPTimeout bounds a single request when no http.Client is supplied.
	DefaultHTTPTimeout = 30 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)

var (
	HTTPScheme       = "http"
	HTTPSecureScheme = "https"
)
