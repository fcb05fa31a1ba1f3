// Package opencatalog is a client for the Icecat OpenCatalog XML interface.
//
// Every lookup builds one URL of the form
//
//	<scheme>://<auth>@<host>?lang=<lang>;output=productxml;<identifier>
//
// issues a single GET through a Getter, reads the whole body and maps the XML
// into a Product. There is no retry, caching or streaming; callers that want
// those wrap the Client.
package opencatalog
