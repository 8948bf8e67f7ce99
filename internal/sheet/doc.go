// Package sheet talks to the control Google Sheet.
//
// The sheet is fronted by an Apps Script web app: reads go through
// doGet with an action query parameter, writes through doPost with
// the action in the JSON body. The client caches read replies for a
// short TTL so a sync burst does not hammer the script, and treats
// the {"status": "error"} envelope as a transport-level failure.
package sheet
