// Package cmislib is a client for content repositories that speak the CMIS
// 1.0 AtomPub binding.
//
// # Connecting
//
// A [Client] is created from the URL of the repository's AtomPub service
// document and a set of basic-auth credentials:
//
//	client, err := cmislib.New("http://localhost:8080/alfresco/s/cmis", "admin", "admin")
//
// [FromConfig] and [FromConnection] accept a [github.com/cmislib/cmislib.go/pkg/connection.Config]
// for control over timeouts, the HTTP client and the logger. Every blocking
// call takes a context.Context.
//
// # Repositories and objects
//
// The service document lists one workspace per repository.
// [Client.GetDefaultRepository] returns the first one unless
// [Client.SelectDefault] says otherwise. A [Repository] exposes its
// capabilities, URI templates, type definitions and collections, and looks up
// objects by id or by path.
//
// Objects are loaded lazily from their Atom entries. [Object] is the generic
// form; once an entry is known it is specialized by its cmis:baseTypeId into
// a [Document], [Folder], [Relationship] or [Policy], all of which satisfy
// [CmisObject]. Derived values such as properties, allowable actions and
// links are memoized per object and dropped by Reload.
//
// # Feeds
//
// Children, descendants, queries, version histories and the repository
// collections are returned as a [ResultSet], which follows the feed's paging
// links with [ResultSet.Next] and friends.
//
// # Errors
//
// HTTP failures are reported as [*CmisError] values that match one of the
// sentinel errors with errors.Is:
//
//	_, err := repo.GetObjectByPath(ctx, "/Sites/missing", nil)
//	if errors.Is(err, cmislib.ErrObjectNotFound) {
//		// ...
//	}
//
// Operations the repository does not advertise a capability for return
// [ErrNotSupported]. Operations this package does not implement yet return
// [ErrNotImplemented].
package cmislib
