package assets

// RuntimeBRS is the shared helper library referenced by generated
// components. It carries the string coercion and content-node helpers the
// emitters call, plus the stdlib polyfills.
const RuntimeBRS = `' Shared helpers for generated components. Do not edit.

function rsv_str(v as dynamic) as string
    if v = invalid then return ""
    if type(v) = "roString" or type(v) = "String" then return v
    if type(v) = "roBoolean" or type(v) = "Boolean" then
        if v then return "true"
        return "false"
    end if
    return v.ToStr()
end function

function rsv_contentFromArray(items as object) as object
    content = CreateObject("roSGNode", "ContentNode")
    if items = invalid then return content
    i = 0
    for each item in items
        row = content.createChild("ContentNode")
        row.addFields({ value: item, index: i })
        i = i + 1
    end for
    return content
end function

function rsv_arrayIncludes(arr as object, needle as dynamic) as boolean
    if arr = invalid then return false
    for each item in arr
        if item = needle then return true
    end for
    return false
end function

function rsv_arrayIndexOf(arr as object, needle as dynamic) as integer
    if arr = invalid then return -1
    i = 0
    for each item in arr
        if item = needle then return i
        i = i + 1
    end for
    return -1
end function

function rsv_arrayJoin(arr as object, sep as string) as string
    if arr = invalid then return ""
    out = ""
    first = true
    for each item in arr
        if first then
            out = rsv_str(item)
            first = false
        else
            out = out + sep + rsv_str(item)
        end if
    end for
    return out
end function
`
