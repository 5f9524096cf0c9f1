package constants

// rollcall response codes
// these consist of 4 digit numbers
//
// the 1st 3 identify the scenario
// 4th indicates if the client should prompt the person to retry. 0 means no retry prompt. 1 means prompt.

var ATTENDANCE_MARKED uint = 2100     // attendance recorded for the first time today
var ATTENDANCE_DUPLICATE uint = 2110  // attendance already recorded for this course today
var IDENTITY_ENROLLED uint = 2200     // identity created or re-enrolled
var LIVENESS_PASSED uint = 2300       // challenge session or spoof check passed
var NO_FACE_DETECTED uint = 4101      // ask the person to face the camera and retry
var INVALID_IMAGE uint = 4111         // undecodable bytes or unsupported content type
var NO_MATCH_FOUND uint = 4121        // face did not match any enrolled identity
var SPOOF_REJECTED uint = 4130        // spoof classifier rejected the image
var LIVENESS_FAILED uint = 4141       // challenge session failed or was incomplete
var LIVENESS_UNVERIFIABLE uint = 4151 // spoof verdict was no_face or unknown
var CHALLENGE_EXPIRED uint = 4160     // challenge id unknown, used or expired
var RATE_LIMITED uint = 4291          // too many requests from this address, retry shortly
var EMBEDDING_MISMATCH uint = 5110    // stored or produced embedding has the wrong dimensionality
var MODEL_UNAVAILABLE uint = 5120     // a model collaborator failed
var STORE_UNAVAILABLE uint = 5131     // storage is temporarily unavailable, safe to retry

// MATCH_THRESHOLD is the cosine similarity a candidate must strictly exceed.
const MATCH_THRESHOLD = 0.6

// FACE_INPUT_SIZE is the square side of the crop fed to the embedder.
const FACE_INPUT_SIZE = 160

// NUM_CHALLENGES is the number of challenges in one liveness session.
const NUM_CHALLENGES = 4

var ALLOWED_IMAGE_TYPES = []string{"image/jpeg", "image/png"}

var OPERATOR_ROLES = []string{"admin", "operator"}
