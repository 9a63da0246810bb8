package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer access
// token on authenticated requests.
const AccessTokenHeaderName = "Authorization"

// DateLayout is the wire format for calendar dates (ISO, date only).
const DateLayout = "2006-01-02"

// MonthLayout is the wire format for month keys.
const MonthLayout = "2006-01"

// CommentMaxLength bounds the free-text comment on a protocol entry.
const CommentMaxLength = 700
